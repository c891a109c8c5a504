package model

import "time"

var (
	SkillCategories    = []string{"Technical", "Soft Skills", "Languages", "Industry-Specific"}
	SkillProficiencies = []string{"Beginner", "Intermediate", "Advanced", "Expert"}
)

type Skill struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"-"`
	Name           string    `db:"name" json:"name"`
	NormalizedName string    `db:"normalized_name" json:"normalizedName"`
	Category       string    `db:"category" json:"category"`
	Proficiency    string    `db:"proficiency" json:"proficiency"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
