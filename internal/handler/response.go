package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

// UserView is the client-facing shape of a user.
type UserView struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Name        string   `json:"name"`
	Picture     string   `json:"picture"`
	Providers   []string `json:"providers"`
	HasPassword bool     `json:"hasPassword"`
}

func userView(u *model.User) UserView {
	providers := u.Providers
	if providers == nil {
		providers = []string{}
	}
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Name:        u.Name(),
		Picture:     u.Picture,
		Providers:   providers,
		HasPassword: u.HasPassword(),
	}
}

type envelope map[string]any

// decodeJSON reads the request body into dst. Malformed or oversized bodies
// are reported as validation errors.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.Validation("Request body too large", nil)
	}
	return apperr.Validation("Malformed JSON body", nil)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
