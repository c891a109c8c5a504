package handler

import (
	"log/slog"
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/service"
	"github.com/mariaangelps/490-The-Team/internal/session"
)

type AccountHandler struct {
	userService *service.UserService
	sessions    *session.Manager
}

func NewAccountHandler(userService *service.UserService, sessions *session.Manager) *AccountHandler {
	return &AccountHandler{
		userService: userService,
		sessions:    sessions,
	}
}

// Show returns the full account view, including linked providers.
func (h *AccountHandler) Show(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	user, err := h.userService.ByID(r.Context(), identity.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"user": userView(user)})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.DeleteAccountInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), *identity, in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	// The cascade already dropped SQL sessions; Redis needs the explicit sweep.
	if err := h.sessions.DestroyUser(r.Context(), identity.ID); err != nil {
		slog.Warn("failed to revoke sessions of deleted user", "error", err, "user_id", identity.ID)
	}
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("failed to destroy session", "error", err)
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"message": "Account deleted"})
}
