package validation

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var lower = cases.Lower(language.Und)

// ValidateEmail validates email format and length
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	if !emailPattern.MatchString(email) {
		return errors.New("invalid email address format")
	}

	return nil
}

// NormalizeEmail returns the canonical form used as the account identity key.
func NormalizeEmail(email string) string {
	return lower.String(strings.TrimSpace(email))
}

// NormalizeKey lowercases and trims free text used as a uniqueness key.
func NormalizeKey(s string) string {
	return lower.String(strings.TrimSpace(s))
}
