package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/config"
	"github.com/mariaangelps/490-The-Team/internal/db"
	"github.com/mariaangelps/490-The-Team/internal/mailer"
	"github.com/mariaangelps/490-The-Team/internal/oauth"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/service"
	"github.com/mariaangelps/490-The-Team/internal/session"
	"github.com/mariaangelps/490-The-Team/internal/storage"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Sessions *session.Manager
	Storage  *storage.LocalStorage
	Mail     *mailer.Queue

	OAuthProviders *oauth.Registry
	OAuthState     *oauth.StateSigner

	TokenRepository repository.TokenRepository

	AuthService       *service.AuthService
	UserService       *service.UserService
	ProfileService    *service.ProfileService
	EmailService      *service.EmailService
	FileService       *service.FileService
	EmploymentService *service.EmploymentService
	EducationService  *service.EducationService
	SkillService      *service.SkillService

	redis *redis.Client
}

type options struct {
	mailer    mailer.Mailer
	providers []oauth.Provider
}

type Option func(*options)

// WithMailer replaces the configured mail transport.
func WithMailer(m mailer.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithOAuthProviders replaces the providers built from config.
func WithOAuthProviders(providers ...oauth.Provider) Option {
	return func(o *options) { o.providers = providers }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection, cfg.DBTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{Cfg: cfg, DB: database}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	employmentRepository := repository.NewEmploymentRepository(database)
	educationRepository := repository.NewEducationRepository(database)
	skillRepository := repository.NewSkillRepository(database)
	a.TokenRepository = tokenRepository

	// Sessions
	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		a.redis, err = session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = session.NewRedisStore(a.redis)
	case "sql", "":
		store = repository.NewSessionRepository(database)
	default:
		_ = database.Close()
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
	a.Sessions = session.NewManager(store, session.Options{
		Secret: []byte(cfg.SessionSecret),
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	})

	// Storage
	a.Storage, err = storage.NewLocalStorage(cfg.UploadPath, cfg.APIURL+"/uploads")
	if err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Mail
	transport := o.mailer
	if transport == nil {
		transport = newTransport(cfg)
	}
	a.Mail = mailer.NewQueue(
		mailer.NewBreakerMailer(transport, mailer.DefaultBreakerSettings(cfg.MailTransport)),
		mailer.QueueOptions{Size: cfg.MailQueueSize, SendTimeout: cfg.MailTimeout},
	)

	// OAuth
	providers := o.providers
	if providers == nil {
		providers = configuredProviders(cfg)
	}
	a.OAuthProviders = oauth.NewRegistry(providers...)
	slog.Info("oauth providers enabled", "providers", a.OAuthProviders.Names())
	a.OAuthState = oauth.NewStateSigner([]byte(cfg.SessionSecret), cfg.IsProduction())

	// Services
	hasher := service.NewPasswordHasher(cfg.BcryptCost, 0)
	a.EmailService = service.NewEmailService(a.Mail, cfg.ClientURL, cfg.AppName)
	a.FileService = service.NewFileService(userRepository, a.Storage)
	a.AuthService = service.NewAuthService(userRepository, tokenRepository, hasher, a.EmailService, service.AuthConfig{
		ResetTokenTTL: cfg.TokenPasswordResetExpiry,
	})
	a.UserService = service.NewUserService(userRepository, hasher, a.FileService, a.EmailService)
	a.ProfileService = service.NewProfileService(profileRepository)
	a.EmploymentService = service.NewEmploymentService(employmentRepository)
	a.EducationService = service.NewEducationService(educationRepository)
	a.SkillService = service.NewSkillService(skillRepository)

	return a, nil
}

func newTransport(cfg *config.Config) mailer.Mailer {
	switch cfg.MailTransport {
	case "resend":
		return mailer.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	case "smtp":
		return mailer.NewSMTPMailer(mailer.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Secure:   cfg.SMTPSecure,
			From:     cfg.EmailFrom,
		})
	default:
		return mailer.LogMailer{}
	}
}

// configuredProviders returns the providers that have credentials.
func configuredProviders(cfg *config.Config) []oauth.Provider {
	var providers []oauth.Provider

	google := oauth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleCallbackURL,
	}
	if google.Enabled() {
		providers = append(providers, oauth.NewGoogle(google))
	}

	linkedIn := oauth.Config{
		ClientID:     cfg.LinkedInClientID,
		ClientSecret: cfg.LinkedInClientSecret,
		RedirectURL:  cfg.LinkedInCallbackURL,
	}
	if linkedIn.Enabled() {
		providers = append(providers, oauth.NewLinkedIn(linkedIn))
	}

	return providers
}

// Cleanup purges expired sessions and reset tokens.
func (a *App) Cleanup(ctx context.Context) error {
	sessions, err := a.Sessions.Cleanup(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up sessions: %w", err)
	}
	tokens, err := a.TokenRepository.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up tokens: %w", err)
	}
	slog.Info("cleanup finished", "sessions", sessions, "tokens", tokens)
	return nil
}

// Close drains the mail queue, then releases the stores.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.Mail != nil {
		err = a.Mail.Close(ctx)
	}
	a.closeStores()
	return err
}

func (a *App) closeStores() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("failed to close redis", "error", err)
		}
	}
	if err := db.Close(a.DB); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}
