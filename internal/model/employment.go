package model

import "time"

type Employment struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	Title       string    `db:"title" json:"title"`
	Company     string    `db:"company" json:"company"`
	Location    string    `db:"location" json:"location"`
	StartDate   string    `db:"start_date" json:"startDate"` // YYYY-MM or YYYY-MM-DD
	EndDate     *string   `db:"end_date" json:"endDate"`     // nil while current
	Current     bool      `db:"is_current" json:"current"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
