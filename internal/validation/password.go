package validation

import (
	"errors"
	"unicode"
)

// PasswordRule is shown to users next to the password field.
const PasswordRule = "Min 8, 1 upper, 1 lower, 1 number"

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	// bcrypt silently truncates passwords longer than 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 bytes")
	}

	var upper, low, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			low = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !low || !digit {
		return errors.New("password needs an uppercase letter, a lowercase letter and a number")
	}

	return nil
}
