package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName   string
	AppEnv    string
	Port      string
	ClientURL string // SPA origin: redirect targets and reset links
	APIURL    string // public base URL of this API, used for OAuth callbacks

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	DBTimeout    time.Duration

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string // "sql" or "redis"

	// Redis (only when SESSION_STORE=redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Security
	BcryptCost               int
	TokenPasswordResetExpiry time.Duration

	// OAuth
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleCallbackURL    string
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInCallbackURL  string

	// Email
	MailTransport string // "resend", "smtp" or "log"; detected when empty
	EmailFrom     string
	ResendAPIKey  string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPSecure    bool
	MailTimeout   time.Duration
	MailQueueSize int

	// Observability (optional)
	SentryDSN string
	LogLevel  string

	// Storage
	UploadPath string

	// Maintenance
	CleanupInterval time.Duration

	// Proxies whose X-Forwarded-For is believed (IPs or CIDRs)
	TrustedProxies []string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	apiURL := strings.TrimRight(envString("API_URL", "http://localhost:4000"), "/")

	cfg := &Config{
		// Application
		AppName:   envString("APP_NAME", "ATS Career Profile"),
		AppEnv:    envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:      envString("PORT", "4000"),
		ClientURL: strings.TrimRight(envString("CLIENT_URL", "http://localhost:5173"), "/"),
		APIURL:    apiURL,

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/app.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"),
		DBTimeout:    envDuration("DB_TIMEOUT", 5*time.Second),

		// Sessions
		SessionSecret: envRequired("SESSION_SECRET"),
		SessionTTL:    envDuration("SESSION_TTL", 168*time.Hour), // 7 days
		SessionStore:  envString("SESSION_STORE", "sql"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		// Security
		BcryptCost:               envInt("BCRYPT_COST", 12),
		TokenPasswordResetExpiry: envDuration("TOKEN_PASSWORD_RESET_EXPIRY", 1*time.Hour),

		// OAuth
		GoogleClientID:       envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   envString("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:    envString("GOOGLE_CALLBACK_URL", apiURL+"/api/auth/google/callback"),
		LinkedInClientID:     envString("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: envString("LINKEDIN_CLIENT_SECRET", ""),
		LinkedInCallbackURL:  envString("LINKEDIN_CALLBACK_URL", apiURL+"/api/auth/linkedin/callback"),

		// Email (a transport is optional in development, required in production)
		MailTransport: envString("MAIL_TRANSPORT", ""),
		EmailFrom:     envString("EMAIL_FROM", "no-reply@example.com"),
		ResendAPIKey:  envString("RESEND_API_KEY", ""),
		SMTPHost:      envString("SMTP_HOST", ""),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUser:      envString("SMTP_USER", ""),
		SMTPPass:      envString("SMTP_PASS", ""),
		SMTPSecure:    envBool("SMTP_SECURE", false),
		MailTimeout:   envDuration("MAIL_TIMEOUT", 10*time.Second),
		MailQueueSize: envInt("MAIL_QUEUE_SIZE", 100),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
		LogLevel:  envString("LOG_LEVEL", ""),

		UploadPath:      envString("UPLOAD_PATH", "uploads"),
		CleanupInterval: envDuration("CLEANUP_INTERVAL", 1*time.Hour),
		TrustedProxies:  envList("TRUSTED_PROXIES"),
	}

	if cfg.MailTransport == "" {
		cfg.MailTransport = detectMailTransport(cfg)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// detectMailTransport picks resend, then SMTP, falling back to log mode.
func detectMailTransport(cfg *Config) string {
	switch {
	case cfg.ResendAPIKey != "":
		return "resend"
	case cfg.SMTPHost != "":
		return "smtp"
	default:
		return "log"
	}
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to use log mode for easier local testing.
func validateProduction(cfg *Config) {
	if len(cfg.SessionSecret) < 32 {
		slog.Error("production deployment requires SESSION_SECRET of at least 32 characters")
		os.Exit(1)
	}
	if cfg.MailTransport == "log" && os.Getenv("MAIL_TRANSPORT") != "log" {
		slog.Error("production deployment requires RESEND_API_KEY or SMTP_HOST",
			"hint", "set MAIL_TRANSPORT=log to explicitly keep emails in the log")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma separated value, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets, credentials and connection strings are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:   c.AppName,
		AppEnv:    c.AppEnv,
		Port:      c.Port,
		ClientURL: c.ClientURL,
		APIURL:    c.APIURL,

		DBDriver:     c.DBDriver,
		SessionTTL:   c.SessionTTL,
		SessionStore: c.SessionStore,

		GoogleClientID:   c.GoogleClientID,
		LinkedInClientID: c.LinkedInClientID,

		MailTransport: c.MailTransport,
		EmailFrom:     c.EmailFrom,

		UploadPath:     c.UploadPath,
		TrustedProxies: c.TrustedProxies,
	}
}
