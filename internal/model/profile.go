package model

import "time"

// Experience levels accepted on the basic profile.
var ExperienceLevels = []string{"Entry", "Mid", "Senior", "Executive"}

// Profile holds the basic contact and summary data shown on a resume.
type Profile struct {
	UserID          string    `db:"user_id" json:"-"`
	FullName        string    `db:"full_name" json:"fullName"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	City            string    `db:"city" json:"city"`
	State           string    `db:"state" json:"state"`
	Headline        string    `db:"headline" json:"headline"`
	Bio             string    `db:"bio" json:"bio"`
	Industry        string    `db:"industry" json:"industry"`
	ExperienceLevel string    `db:"experience_level" json:"experienceLevel"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}
