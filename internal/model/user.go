package model

import (
	"slices"
	"strings"
	"time"
)

// Provider tags linked to a user.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	EmailNorm    string     `db:"email_norm"`
	PasswordHash *string    `db:"password_hash"` // Nullable for OAuth-only users
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Picture      string     `db:"picture"`
	DeletedAt    *time.Time `db:"deleted_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`

	// Loaded from user_providers
	Providers []string `db:"-"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasProvider(provider string) bool {
	return slices.Contains(u.Providers, provider)
}

// Name is the display name, falling back to the email address.
func (u *User) Name() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Identity is the projection stored in the session.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name()}
}
