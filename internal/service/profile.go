package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/validation"
)

type ProfileInput struct {
	FullName        string `json:"fullName" validate:"max=100"`
	Email           string `json:"email" validate:"omitempty,emailaddr"`
	Phone           string `json:"phone" validate:"max=32"`
	City            string `json:"city" validate:"max=100"`
	State           string `json:"state" validate:"max=100"`
	Headline        string `json:"headline" validate:"max=150"`
	Bio             string `json:"bio" validate:"max=500"`
	Industry        string `json:"industry" validate:"max=100"`
	ExperienceLevel string `json:"experienceLevel" validate:"omitempty,experiencelevel"`
}

type ProfileService struct {
	profileRepository repository.ProfileRepository
	now               func() time.Time
}

func NewProfileService(profileRepository repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepository: profileRepository,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ByUserID returns nil without error when the user has not saved a profile yet.
func (s *ProfileService) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepository.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, nil
	}
	return profile, err
}

func (s *ProfileService) Save(ctx context.Context, userID string, in ProfileInput) (*model.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	profile := &model.Profile{
		UserID:          userID,
		FullName:        strings.TrimSpace(in.FullName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		City:            strings.TrimSpace(in.City),
		State:           strings.TrimSpace(in.State),
		Headline:        strings.TrimSpace(in.Headline),
		Bio:             strings.TrimSpace(in.Bio),
		Industry:        strings.TrimSpace(in.Industry),
		ExperienceLevel: in.ExperienceLevel,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.profileRepository.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepository.ByUserID(ctx, userID)
}
