package service

import (
	"errors"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
)

// withField adds a field message to a validation error, or starts one when
// err is nil. Messages from tag validation win over cross-field checks.
func withField(err error, field, message string) error {
	if err == nil {
		return apperr.Validation("Validation failed", map[string]string{field: message})
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.CodeValidation {
		return err
	}
	if appErr.Fields == nil {
		appErr.Fields = map[string]string{}
	}
	if _, ok := appErr.Fields[field]; !ok {
		appErr.Fields[field] = message
	}
	return appErr
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// newestFirst orders flagged entries ahead of the rest, then by the two
// dates descending. Dates are YYYY-MM or YYYY-MM-DD, so they sort as strings.
func newestFirst(aFlag, bFlag bool, aEnd, bEnd, aStart, bStart string) int {
	if aFlag != bFlag {
		if aFlag {
			return -1
		}
		return 1
	}
	if aEnd != bEnd {
		if aEnd > bEnd {
			return -1
		}
		return 1
	}
	if aStart != bStart {
		if aStart > bStart {
			return -1
		}
		return 1
	}
	return 0
}
