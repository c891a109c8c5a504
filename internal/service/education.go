package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/validation"
)

type EducationInput struct {
	Institution       string   `json:"institution" validate:"required,max=150"`
	DegreeType        string   `json:"degreeType" validate:"required,max=100"`
	FieldOfStudy      string   `json:"fieldOfStudy" validate:"required,max=100"`
	Level             string   `json:"level" validate:"required,educationlevel"`
	StartDate         string   `json:"startDate" validate:"omitempty,yearmonth"`
	GraduationDate    string   `json:"graduationDate" validate:"omitempty,yearmonth"`
	CurrentlyEnrolled bool     `json:"currentlyEnrolled"`
	GPA               *float64 `json:"gpa" validate:"omitempty,gte=0,lte=5"`
	GPAPrivate        bool     `json:"gpaPrivate"`
	Honors            string   `json:"honors" validate:"max=500"`
}

func (in *EducationInput) validate() error {
	in.Institution = strings.TrimSpace(in.Institution)
	in.DegreeType = strings.TrimSpace(in.DegreeType)
	in.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.GraduationDate = strings.TrimSpace(in.GraduationDate)
	in.Honors = strings.TrimSpace(in.Honors)

	err := validation.Struct(in)
	if !in.CurrentlyEnrolled && in.GraduationDate == "" {
		err = withField(err, "graduationDate", "Required unless currently enrolled")
	}
	if in.StartDate != "" && in.GraduationDate != "" && in.GraduationDate < in.StartDate {
		err = withField(err, "graduationDate", "Must be after start date")
	}
	return err
}

type EducationService struct {
	educationRepository repository.EducationRepository
	now                 func() time.Time
}

func NewEducationService(educationRepository repository.EducationRepository) *EducationService {
	return &EducationService{
		educationRepository: educationRepository,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

// List returns enrolled entries first, then by graduation and start date, newest first.
func (s *EducationService) List(ctx context.Context, userID string) ([]model.Education, error) {
	entries, err := s.educationRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b model.Education) int {
		return newestFirst(a.CurrentlyEnrolled, b.CurrentlyEnrolled, a.GraduationDate, b.GraduationDate, a.StartDate, b.StartDate)
	})
	return entries, nil
}

func (s *EducationService) Create(ctx context.Context, userID string, in EducationInput) (*model.Education, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	entry := &model.Education{UserID: userID, CreatedAt: now}
	applyEducation(entry, in, now)
	if err := s.educationRepository.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EducationService) Update(ctx context.Context, userID, id string, in EducationInput) (*model.Education, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	entry, err := s.educationRepository.ByID(ctx, userID, id)
	if err != nil {
		return nil, educationError(err)
	}
	applyEducation(entry, in, s.now())
	if err := s.educationRepository.Update(ctx, entry); err != nil {
		return nil, educationError(err)
	}
	return entry, nil
}

func (s *EducationService) Delete(ctx context.Context, userID, id string) error {
	return educationError(s.educationRepository.Delete(ctx, userID, id))
}

func applyEducation(e *model.Education, in EducationInput, now time.Time) {
	e.Institution = in.Institution
	e.DegreeType = in.DegreeType
	e.FieldOfStudy = in.FieldOfStudy
	e.Level = in.Level
	e.StartDate = in.StartDate
	e.GraduationDate = in.GraduationDate
	e.CurrentlyEnrolled = in.CurrentlyEnrolled
	e.GPA = in.GPA
	e.GPAPrivate = in.GPAPrivate
	e.Honors = in.Honors
	e.UpdatedAt = now
}

func educationError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Education entry")
	}
	return err
}
