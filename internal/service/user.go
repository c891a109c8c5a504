package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/metrics"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/validation"
)

type DeleteAccountInput struct {
	Password string `json:"password" validate:"required"`
}

type UserService struct {
	userRepository repository.UserRepository
	hasher         *PasswordHasher
	fileService    *FileService
	emailService   *EmailService
}

func NewUserService(
	userRepository repository.UserRepository,
	hasher *PasswordHasher,
	fileService *FileService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		hasher:         hasher,
		fileService:    fileService,
		emailService:   emailService,
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.NotFound("User")
	}
	return user, err
}

// DeleteAccount re-checks the password and hard-deletes the user. Sessions
// are the caller's to destroy.
func (s *UserService) DeleteAccount(ctx context.Context, identity model.Identity, in DeleteAccountInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	user, err := s.userRepository.ByID(ctx, identity.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.AuthRequired()
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return apperr.OAuthOnly()
	}
	ok, err := s.hasher.Compare(ctx, *user.PasswordHash, in.Password)
	if err != nil {
		return err
	}
	if !ok {
		metrics.AuthEvent("delete_account", "invalid_password")
		return apperr.InvalidPassword()
	}

	// Foreign key CASCADE removes providers, tokens, sessions and resume rows
	err = s.userRepository.Delete(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.fileService.deleteStored(ctx, user.Picture)

	if err := s.emailService.SendAccountDeleted(user.Email, user.Name()); err != nil {
		slog.Warn("failed to queue account deleted email", "user_id", user.ID, "error", err)
	}

	metrics.AuthEvent("delete_account", "success")
	slog.Info("account deleted", "user_id", user.ID)
	return nil
}
