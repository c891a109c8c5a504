package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName validates an optional display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}
