package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
)

// OriginCheck rejects state-changing requests whose Origin (or Referer)
// is not one of the allowed origins. Session cookies are SameSite=Lax, and
// this closes the remaining gap for cross-site POSTs from sibling subdomains.
func OriginCheck(allowed ...string) func(http.Handler) http.Handler {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o = normalizeOrigin(o); o != "" {
			origins[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip check for safe methods (GET, HEAD, OPTIONS)
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = normalizeOrigin(r.Referer())
			}
			// Non-browser clients send neither header
			if origin == "" || origins[normalizeOrigin(origin)] {
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("cross-origin request rejected",
				"path", r.URL.Path,
				"method", r.Method,
				"origin", origin,
				"ip", remoteIP(r),
			)
			apperr.Write(w, r, apperr.Forbidden("Cross-origin request rejected"))
		})
	}
}

func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
