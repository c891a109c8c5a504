package model

import "time"

var EducationLevels = []string{
	"High School",
	"Associate",
	"Bachelor's",
	"Master's",
	"PhD",
	"Professional",
	"Certificate",
	"Diploma",
}

type Education struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"-"`
	Institution       string    `db:"institution" json:"institution"`
	DegreeType        string    `db:"degree_type" json:"degreeType"`
	FieldOfStudy      string    `db:"field_of_study" json:"fieldOfStudy"`
	Level             string    `db:"level" json:"level"`
	StartDate         string    `db:"start_date" json:"startDate"`
	GraduationDate    string    `db:"graduation_date" json:"graduationDate"`
	CurrentlyEnrolled bool      `db:"currently_enrolled" json:"currentlyEnrolled"`
	GPA               *float64  `db:"gpa" json:"gpa"`
	GPAPrivate        bool      `db:"gpa_private" json:"gpaPrivate"`
	Honors            string    `db:"honors" json:"honors"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}
