package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/session"
)

// LoadIdentity resolves the session cookie and adds the identity to the
// context. Anonymous requests pass through untouched.
func LoadIdentity(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), r)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					slog.Warn("failed to load session", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
				}
				next.ServeHTTP(w, r)
				return
			}

			identity := sess.Identity()
			ctx := ctxkeys.WithIdentity(r.Context(), &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with AUTH_REQUIRED.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Identity(r.Context()) == nil {
			apperr.Write(w, r, apperr.AuthRequired())
			return
		}
		next.ServeHTTP(w, r)
	}
}
