package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("reset: %w", InvalidToken())

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestFrom_WrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")

	got := From(cause)

	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, cause)
}

func TestFrom_KeepsAppErrors(t *testing.T) {
	orig := Field("email", "Invalid email")

	got := From(fmt.Errorf("register: %w", orig))

	assert.Same(t, orig, got)
	assert.Equal(t, map[string]string{"email": "Invalid email"}, got.Fields)
}

func TestStatuses(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{DuplicateEmail(), http.StatusConflict},
		{InvalidCredentials(), http.StatusUnauthorized},
		{OAuthOnly(), http.StatusForbidden},
		{InvalidToken(), http.StatusBadRequest},
		{AuthRequired(), http.StatusUnauthorized},
		{OnlyOneEntryLeft(), http.StatusBadRequest},
		{RateLimited(), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestWrite_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)

	Write(rec, req, fmt.Errorf("register: %w", Field("email", "Invalid email")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_ERROR","message":"Invalid email","fields":{"email":"Invalid email"}}}`, rec.Body.String())
}

func TestWrite_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/skills", nil)

	Write(rec, req, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, rec.Body.String(), CodeInternal)
}
