package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/metrics"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/oauth"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/validation"
)

// ResetRequestedMessage is returned for every reset request so responses
// never reveal whether an account exists.
const ResetRequestedMessage = "If an account exists, a reset link has been sent."

type RegisterInput struct {
	Email           string `json:"email" validate:"emailaddr"`
	Password        string `json:"password" validate:"strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	FirstName       string `json:"firstName" validate:"max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CompleteResetInput struct {
	Token           string `json:"token"`
	Password        string `json:"password" validate:"strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

type AuthConfig struct {
	ResetTokenTTL time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

type AuthService struct {
	userRepository  repository.UserRepository
	tokenRepository repository.TokenRepository
	hasher          *PasswordHasher
	emailService    *EmailService
	resetTTL        time.Duration
	now             func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	tokenRepository repository.TokenRepository,
	hasher *PasswordHasher,
	emailService *EmailService,
	cfg AuthConfig,
) *AuthService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{
		userRepository:  userRepository,
		tokenRepository: tokenRepository,
		hasher:          hasher,
		emailService:    emailService,
		resetTTL:        ttl,
		now:             func() time.Time { return now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		metrics.AuthEvent("register", "invalid")
		return nil, err
	}

	emailNorm := validation.NormalizeEmail(in.Email)
	_, err := s.userRepository.ByEmailNorm(ctx, emailNorm)
	if err == nil {
		metrics.AuthEvent("register", "duplicate")
		return nil, apperr.DuplicateEmail()
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(in.Email),
		EmailNorm:    emailNorm,
		PasswordHash: &hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(ctx, user, model.ProviderLocal)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent registration
		metrics.AuthEvent("register", "duplicate")
		return nil, apperr.DuplicateEmail()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.emailService.SendWelcome(user.Email, user.Name()); err != nil {
		slog.Warn("failed to queue welcome email", "error", err, "user_id", user.ID)
	}

	metrics.AuthEvent("register", "success")
	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByEmailNorm(ctx, validation.NormalizeEmail(in.Email))
	if errors.Is(err, repository.ErrUserNotFound) {
		s.hasher.CompareDummy(ctx, in.Password)
		metrics.AuthEvent("login", "invalid_credentials")
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	if !user.HasPassword() {
		metrics.AuthEvent("login", "oauth_only")
		slog.Info("login failed, account has no password", "user_id", user.ID)
		return nil, apperr.OAuthOnly()
	}

	ok, err := s.hasher.Compare(ctx, *user.PasswordHash, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.AuthEvent("login", "invalid_credentials")
		slog.Info("login failed", "user_id", user.ID)
		return nil, apperr.InvalidCredentials()
	}

	metrics.AuthEvent("login", "success")
	return user, nil
}

// AuthenticateOAuth finds or creates the user for a provider profile,
// matching on normalized email. Existing users get the provider linked and
// empty display fields backfilled; stored values are never overwritten.
func (s *AuthService) AuthenticateOAuth(ctx context.Context, provider string, profile *oauth.Profile) (*model.User, error) {
	if profile == nil || strings.TrimSpace(profile.Email) == "" {
		metrics.AuthEvent("oauth", "no_email")
		return nil, oauth.ErrNoEmail
	}
	emailNorm := validation.NormalizeEmail(profile.Email)

	user, err := s.userRepository.ByEmailNorm(ctx, emailNorm)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.createOAuthUser(ctx, provider, emailNorm, profile)
		if err == nil {
			metrics.AuthEvent("oauth", "created")
			return user, nil
		}
		if !errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, err
		}
		// Created concurrently; fall through and merge into it
		user, err = s.userRepository.ByEmailNorm(ctx, emailNorm)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	changed := false
	if user.FirstName == "" && profile.GivenName != "" {
		user.FirstName = profile.GivenName
		changed = true
	}
	if user.LastName == "" && profile.FamilyName != "" {
		user.LastName = profile.FamilyName
		changed = true
	}
	if user.Picture == "" && profile.PictureURL != "" {
		user.Picture = profile.PictureURL
		changed = true
	}

	if changed || !user.HasProvider(provider) {
		user.UpdatedAt = s.now()
		if err := s.userRepository.LinkProvider(ctx, user, provider); err != nil {
			return nil, fmt.Errorf("failed to link provider: %w", err)
		}
	}

	metrics.AuthEvent("oauth", "linked")
	slog.Info("user authenticated via oauth", "user_id", user.ID, "provider", provider)
	return user, nil
}

func (s *AuthService) createOAuthUser(ctx context.Context, provider, emailNorm string, profile *oauth.Profile) (*model.User, error) {
	now := s.now()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     strings.TrimSpace(profile.Email),
		EmailNorm: emailNorm,
		FirstName: profile.GivenName,
		LastName:  profile.FamilyName,
		Picture:   profile.PictureURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepository.Create(ctx, user, provider); err != nil {
		return nil, err
	}
	slog.Info("new oauth user created", "user_id", user.ID, "provider", provider)
	return user, nil
}

// RequestReset issues a reset token when the account exists. The caller
// always answers with ResetRequestedMessage.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	emailNorm := validation.NormalizeEmail(email)
	if validation.ValidateEmail(emailNorm) != nil {
		return nil
	}

	user, err := s.userRepository.ByEmailNorm(ctx, emailNorm)
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.AuthEvent("reset_request", "unknown")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to lookup user: %w", err)
	}

	raw, hash, err := generateToken()
	if err != nil {
		return err
	}

	now := s.now()
	token := &model.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.tokenRepository.Issue(ctx, token); err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.emailService.SendPasswordReset(user.Email, raw, s.resetTTL); err != nil {
		slog.Error("failed to queue reset email", "error", err, "user_id", user.ID)
	}

	metrics.AuthEvent("reset_request", "issued")
	return nil
}

// CompleteReset sets a new password from a reset token. The user is not
// signed in; the caller starts a session.
func (s *AuthService) CompleteReset(ctx context.Context, in CompleteResetInput) (*model.User, error) {
	in.Token = strings.TrimSpace(in.Token)
	if in.Token == "" {
		return nil, apperr.Field("token", "Missing token")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	token, err := s.tokenRepository.ByHash(ctx, hashToken(in.Token))
	if errors.Is(err, repository.ErrTokenNotFound) {
		metrics.AuthEvent("reset_complete", "invalid_token")
		return nil, apperr.InvalidToken()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup token: %w", err)
	}

	now := s.now()
	if !token.IsValid(now) {
		metrics.AuthEvent("reset_complete", "invalid_token")
		return nil, apperr.InvalidToken()
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	err = s.tokenRepository.Redeem(ctx, token, hash, now)
	if errors.Is(err, repository.ErrTokenUsed) || errors.Is(err, repository.ErrUserNotFound) {
		metrics.AuthEvent("reset_complete", "invalid_token")
		return nil, apperr.InvalidToken()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	metrics.AuthEvent("reset_complete", "success")
	slog.Info("password reset completed", "user_id", user.ID)
	return user, nil
}

// Me refreshes the identity from storage so display-name changes show up
// without a new login.
func (s *AuthService) Me(ctx context.Context, identity model.Identity) (model.Identity, error) {
	user, err := s.userRepository.ByID(ctx, identity.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.Identity{}, apperr.AuthRequired()
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user.Identity(), nil
}
