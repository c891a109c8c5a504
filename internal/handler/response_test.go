package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserView(t *testing.T) {
	hash := "$2a$04$hash"
	u := &model.User{ID: "u1", Email: "a@x.com", FirstName: "Ada", PasswordHash: &hash}

	v := userView(u)

	assert.Equal(t, "Ada", v.Name)
	assert.True(t, v.HasPassword)
	assert.NotNil(t, v.Providers)
	assert.Empty(t, v.Providers)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var dst struct {
			Email string `json:"email"`
		}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`))

		require.NoError(t, decodeJSON(r, &dst))
		assert.Equal(t, "a@x.com", dst.Email)
	})

	t.Run("malformed", func(t *testing.T) {
		var dst map[string]any
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))

		err := decodeJSON(r, &dst)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("too large", func(t *testing.T) {
		var dst map[string]any
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bio":"`+strings.Repeat("x", 64)+`"}`))
		r.Body = http.MaxBytesReader(rec, r.Body, 16)

		err := decodeJSON(r, &dst)
		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, "Request body too large", apperr.From(err).Message)
	})
}

func TestNonNil(t *testing.T) {
	var entries []model.Skill
	assert.Equal(t, []model.Skill{}, nonNil(entries))
}
