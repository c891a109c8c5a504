package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/oauth"
	"github.com/mariaangelps/490-The-Team/internal/service"
	"github.com/mariaangelps/490-The-Team/internal/session"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	providers   *oauth.Registry
	state       *oauth.StateSigner
	clientURL   string
}

func NewAuthHandler(
	authService *service.AuthService,
	sessions *session.Manager,
	providers *oauth.Registry,
	state *oauth.StateSigner,
	clientURL string,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		providers:   providers,
		state:       state,
		clientURL:   clientURL,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, envelope{"message": "Registered", "user": userView(user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), in)
	if err != nil {
		slog.Warn("password login failed", "error", err)
		apperr.Write(w, r, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	slog.Info("user logged in with password", "user_id", user.ID, "email", user.Email)
	apperr.WriteJSON(w, http.StatusOK, envelope{"user": userView(user)})
}

// Logout succeeds with or without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("failed to destroy session", "error", err)
	}
	apperr.WriteJSON(w, http.StatusOK, envelope{"message": "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	me, err := h.authService.Me(r.Context(), *identity)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthRequired) {
			_ = h.sessions.Destroy(r.Context(), w, r)
		}
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"user": me})
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// ResetRequest answers identically whether or not the account exists.
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	var in resetRequestBody
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	if err := h.authService.RequestReset(r.Context(), in.Email); err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"message": service.ResetRequestedMessage})
}

func (h *AuthHandler) ResetComplete(w http.ResponseWriter, r *http.Request) {
	var in service.CompleteResetInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	user, err := h.authService.CompleteReset(r.Context(), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	// Sessions opened with the old password do not survive a reset.
	if err := h.sessions.DestroyUser(r.Context(), user.ID); err != nil {
		slog.Warn("failed to revoke sessions after reset", "error", err, "user_id", user.ID)
	}

	if !h.startSession(w, r, user) {
		return
	}

	slog.Info("user logged in via password reset", "user_id", user.ID, "email", user.Email)
	apperr.WriteJSON(w, http.StatusOK, envelope{"message": "Password has been reset", "user": userView(user)})
}

// OAuthStart redirects to the provider's consent screen.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Get(r.PathValue("provider"))
	if err != nil {
		apperr.Write(w, r, apperr.NotFound("Provider"))
		return
	}

	nonce, err := h.state.Begin(w, provider.Name())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	http.Redirect(w, r, provider.AuthCodeURL(nonce), http.StatusFound)
}

// OAuthCallback finishes the provider flow. Every failure lands the browser
// back on the client login page.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	provider, err := h.providers.Get(name)
	if err != nil {
		slog.Warn("oauth callback for unknown provider", "provider", name)
		h.oauthFailed(w, r)
		return
	}

	if err := h.state.Verify(w, r, provider.Name()); err != nil {
		slog.Warn("oauth state validation failed", "error", err, "provider", name)
		h.oauthFailed(w, r)
		return
	}

	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		slog.Warn("oauth provider returned error", "provider", name, "reason", reason)
		h.oauthFailed(w, r)
		return
	}

	code := query.Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", name)
		h.oauthFailed(w, r)
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "error", err, "provider", name)
		h.oauthFailed(w, r)
		return
	}

	user, err := h.authService.AuthenticateOAuth(r.Context(), provider.Name(), profile)
	if err != nil {
		slog.Error("oauth authentication failed", "error", err, "provider", name, "email", profile.Email)
		h.oauthFailed(w, r)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, r, user.Identity()); err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		h.oauthFailed(w, r)
		return
	}

	slog.Info("user logged in with oauth", "provider", name, "user_id", user.ID, "email", user.Email)
	http.Redirect(w, r, h.clientURL+"/dashboard", http.StatusFound)
}

func (h *AuthHandler) oauthFailed(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.clientURL+"/login?error=oauth", http.StatusFound)
}

// startSession writes the session cookie, rendering the error itself when
// it fails.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	if _, err := h.sessions.Start(r.Context(), w, r, user.Identity()); err != nil {
		apperr.Write(w, r, err)
		return false
	}
	return true
}
