package routes

import (
	"net/http"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/app"
	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/handler"
	"github.com/mariaangelps/490-The-Team/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	jsonBodyLimit   = 1 << 20
	avatarBodyLimit = handler.AvatarFormLimit
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Sessions, app.OAuthProviders, app.OAuthState, app.Cfg.ClientURL)
	account := handler.NewAccountHandler(app.UserService, app.Sessions)
	profile := handler.NewProfileHandler(app.ProfileService, app.FileService)
	employment := handler.NewEmploymentHandler(app.EmploymentService)
	education := handler.NewEducationHandler(app.EducationService)
	skill := handler.NewSkillHandler(app.SkillService)
	health := handler.NewHealthHandler(app.DB)

	// Auth - Authentication flow (rate limited)
	clientIP := middleware.NewClientIP(app.Cfg.TrustedProxies)
	rateLimit := middleware.RateLimit(middleware.NewRateLimiter(10, time.Minute), clientIP)
	oauthLimit := middleware.RateLimit(middleware.NewRateLimiter(30, time.Minute), clientIP)
	body := middleware.MaxBytes(jsonBodyLimit)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.Storage.Root()))))

	// Auth Actions
	mux.HandleFunc("POST /api/auth/register", rateLimit(body(auth.Register)))
	mux.HandleFunc("POST /api/auth/login", rateLimit(body(auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("POST /api/auth/reset/request", rateLimit(body(auth.ResetRequest)))
	mux.HandleFunc("POST /api/auth/reset/complete", rateLimit(body(auth.ResetComplete)))

	// OAuth
	mux.HandleFunc("GET /api/auth/{provider}", oauthLimit(auth.OAuthStart))
	mux.HandleFunc("GET /api/auth/{provider}/callback", oauthLimit(auth.OAuthCallback))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// Account
	mux.HandleFunc("GET /api/users/me", middleware.RequireAuth(account.Show))
	mux.HandleFunc("DELETE /api/users/me", middleware.RequireAuth(body(account.Delete)))

	// Profile
	mux.HandleFunc("GET /api/profile/basic", middleware.RequireAuth(profile.Show))
	mux.HandleFunc("PUT /api/profile/basic", middleware.RequireAuth(body(profile.Update)))
	mux.HandleFunc("POST /api/profile/avatar", middleware.RequireAuth(middleware.MaxBytes(avatarBodyLimit)(profile.UploadAvatar)))
	mux.HandleFunc("DELETE /api/profile/avatar", middleware.RequireAuth(profile.DeleteAvatar))

	// Employment
	mux.HandleFunc("GET /api/employment", middleware.RequireAuth(employment.List))
	mux.HandleFunc("POST /api/employment", middleware.RequireAuth(body(employment.Create)))
	mux.HandleFunc("PUT /api/employment/{id}", middleware.RequireAuth(body(employment.Update)))
	mux.HandleFunc("DELETE /api/employment/{id}", middleware.RequireAuth(employment.Delete))

	// Education
	mux.HandleFunc("GET /api/education", middleware.RequireAuth(education.List))
	mux.HandleFunc("POST /api/education", middleware.RequireAuth(body(education.Create)))
	mux.HandleFunc("PUT /api/education/{id}", middleware.RequireAuth(body(education.Update)))
	mux.HandleFunc("DELETE /api/education/{id}", middleware.RequireAuth(education.Delete))

	// Skills
	mux.HandleFunc("GET /api/skills", middleware.RequireAuth(skill.List))
	mux.HandleFunc("POST /api/skills", middleware.RequireAuth(body(skill.Create)))
	mux.HandleFunc("PUT /api/skills/{id}", middleware.RequireAuth(body(skill.Update)))
	mux.HandleFunc("DELETE /api/skills/{id}", middleware.RequireAuth(skill.Delete))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, r, apperr.NotFound("Route"))
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.SecurityHeaders(app.Cfg.IsProduction()),
		middleware.CORS(app.Cfg.ClientURL),
		middleware.OriginCheck(app.Cfg.ClientURL, app.Cfg.APIURL),
		middleware.Timeout(app.Cfg.DBTimeout),
		middleware.LoadIdentity(app.Sessions),
		middleware.Metrics, // innermost: reads the pattern the mux matched
	)

	return handler
}
