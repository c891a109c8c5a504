// Package apperr defines the stable error codes the API returns to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeOAuthOnly          = "OAUTH_ONLY"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateSkill     = "DUPLICATE_SKILL"
	CodeOnlyOneEntryLeft   = "ONLY_ONE_ENTRY_LEFT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is an error with a client-facing code and HTTP status.
type Error struct {
	Code    string
	Message string
	Status  int
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation         = &Error{Code: CodeValidation, Status: http.StatusBadRequest}
	ErrDuplicateEmail     = &Error{Code: CodeDuplicateEmail, Status: http.StatusConflict}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Status: http.StatusUnauthorized}
	ErrOAuthOnly          = &Error{Code: CodeOAuthOnly, Status: http.StatusForbidden}
	ErrInvalidToken       = &Error{Code: CodeInvalidToken, Status: http.StatusBadRequest}
	ErrAuthRequired       = &Error{Code: CodeAuthRequired, Status: http.StatusUnauthorized}
	ErrInvalidPassword    = &Error{Code: CodeInvalidPassword, Status: http.StatusUnauthorized}
	ErrNotFound           = &Error{Code: CodeNotFound, Status: http.StatusNotFound}
	ErrDuplicateSkill     = &Error{Code: CodeDuplicateSkill, Status: http.StatusConflict}
	ErrOnlyOneEntryLeft   = &Error{Code: CodeOnlyOneEntryLeft, Status: http.StatusBadRequest}
)

func Validation(message string, fields map[string]string) *Error {
	if message == "" {
		message = "Validation failed"
	}
	return &Error{Code: CodeValidation, Message: message, Status: http.StatusBadRequest, Fields: fields}
}

// Field is a shortcut for a single-field validation error.
func Field(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func DuplicateEmail() *Error {
	return &Error{Code: CodeDuplicateEmail, Message: "Email already registered", Status: http.StatusConflict}
}

func InvalidCredentials() *Error {
	return &Error{Code: CodeInvalidCredentials, Message: "Invalid email or password", Status: http.StatusUnauthorized}
}

func OAuthOnly() *Error {
	return &Error{
		Code:    CodeOAuthOnly,
		Message: "This account uses social sign-in. Continue with Google or LinkedIn, or set a password.",
		Status:  http.StatusForbidden,
	}
}

func InvalidToken() *Error {
	return &Error{Code: CodeInvalidToken, Message: "Invalid or expired link", Status: http.StatusBadRequest}
}

func AuthRequired() *Error {
	return &Error{Code: CodeAuthRequired, Message: "Login required", Status: http.StatusUnauthorized}
}

func InvalidPassword() *Error {
	return &Error{Code: CodeInvalidPassword, Message: "Incorrect password", Status: http.StatusUnauthorized}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found", Status: http.StatusNotFound}
}

func DuplicateSkill() *Error {
	return &Error{Code: CodeDuplicateSkill, Message: "Duplicate skill for this user", Status: http.StatusConflict}
}

func OnlyOneEntryLeft() *Error {
	return &Error{
		Code:    CodeOnlyOneEntryLeft,
		Message: "No delete option if only one entry exists",
		Status:  http.StatusBadRequest,
	}
}

func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, Message: "Too many requests, try again later", Status: http.StatusTooManyRequests}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "Something went wrong", Status: http.StatusInternalServerError, Err: err}
}

// From returns err as an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
