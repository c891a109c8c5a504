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

type EmploymentInput struct {
	Title       string `json:"title" validate:"required,max=150"`
	Company     string `json:"company" validate:"required,max=150"`
	Location    string `json:"location" validate:"max=150"`
	StartDate   string `json:"startDate" validate:"required,yearmonth"`
	EndDate     string `json:"endDate" validate:"omitempty,yearmonth"`
	Current     bool   `json:"current"`
	Description string `json:"description" validate:"max=1000"`
}

func (in *EmploymentInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.Description = strings.TrimSpace(in.Description)
	if in.Current {
		in.EndDate = ""
	}
}

func (in *EmploymentInput) validate() error {
	in.normalize()
	err := validation.Struct(in)
	if !in.Current && in.EndDate == "" {
		err = withField(err, "endDate", "Required unless this is your current job")
	}
	if in.EndDate != "" && in.StartDate != "" && in.EndDate < in.StartDate {
		err = withField(err, "endDate", "Must be after start date")
	}
	return err
}

type EmploymentService struct {
	employmentRepository repository.EmploymentRepository
	now                  func() time.Time
}

func NewEmploymentService(employmentRepository repository.EmploymentRepository) *EmploymentService {
	return &EmploymentService{
		employmentRepository: employmentRepository,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// List returns current jobs first, then by end date and start date, newest first.
func (s *EmploymentService) List(ctx context.Context, userID string) ([]model.Employment, error) {
	entries, err := s.employmentRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b model.Employment) int {
		return newestFirst(a.Current, b.Current, deref(a.EndDate), deref(b.EndDate), a.StartDate, b.StartDate)
	})
	return entries, nil
}

func (s *EmploymentService) Create(ctx context.Context, userID string, in EmploymentInput) (*model.Employment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	entry := &model.Employment{UserID: userID, CreatedAt: now}
	applyEmployment(entry, in, now)
	if err := s.employmentRepository.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EmploymentService) Update(ctx context.Context, userID, id string, in EmploymentInput) (*model.Employment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	entry, err := s.employmentRepository.ByID(ctx, userID, id)
	if err != nil {
		return nil, employmentError(err)
	}
	applyEmployment(entry, in, s.now())
	if err := s.employmentRepository.Update(ctx, entry); err != nil {
		return nil, employmentError(err)
	}
	return entry, nil
}

func (s *EmploymentService) Delete(ctx context.Context, userID, id string) error {
	return employmentError(s.employmentRepository.Delete(ctx, userID, id))
}

func applyEmployment(e *model.Employment, in EmploymentInput, now time.Time) {
	e.Title = in.Title
	e.Company = in.Company
	e.Location = in.Location
	e.StartDate = in.StartDate
	e.Current = in.Current
	e.EndDate = nil
	if in.EndDate != "" {
		end := in.EndDate
		e.EndDate = &end
	}
	e.Description = in.Description
	e.UpdatedAt = now
}

func employmentError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Employment entry")
	case errors.Is(err, repository.ErrLastEntry):
		return apperr.OnlyOneEntryLeft()
	}
	return err
}
