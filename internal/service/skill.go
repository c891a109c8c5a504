package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/validation"
)

type SkillInput struct {
	Name        string `json:"name" validate:"required,max=64"`
	Category    string `json:"category" validate:"required,skillcategory"`
	Proficiency string `json:"proficiency" validate:"required,proficiency"`
}

type SkillUpdateInput struct {
	Category    string `json:"category" validate:"required,skillcategory"`
	Proficiency string `json:"proficiency" validate:"required,proficiency"`
}

// SkillMeta lists the accepted values so clients can build their pickers.
type SkillMeta struct {
	Categories    []string `json:"categories"`
	Proficiencies []string `json:"proficiencies"`
}

type SkillService struct {
	skillRepository repository.SkillRepository
	now             func() time.Time
}

func NewSkillService(skillRepository repository.SkillRepository) *SkillService {
	return &SkillService{
		skillRepository: skillRepository,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *SkillService) Meta() SkillMeta {
	return SkillMeta{Categories: model.SkillCategories, Proficiencies: model.SkillProficiencies}
}

// List is ordered by category, then name.
func (s *SkillService) List(ctx context.Context, userID string) ([]model.Skill, error) {
	return s.skillRepository.ListByUser(ctx, userID)
}

func (s *SkillService) Create(ctx context.Context, userID string, in SkillInput) (*model.Skill, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	skill := &model.Skill{
		UserID:         userID,
		Name:           in.Name,
		NormalizedName: validation.NormalizeKey(in.Name),
		Category:       in.Category,
		Proficiency:    in.Proficiency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.skillRepository.Create(ctx, skill)
	if errors.Is(err, repository.ErrDuplicateSkill) {
		return nil, apperr.DuplicateSkill()
	}
	if err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *SkillService) Update(ctx context.Context, userID, id string, in SkillUpdateInput) (*model.Skill, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	skill, err := s.skillRepository.ByID(ctx, userID, id)
	if err != nil {
		return nil, skillError(err)
	}
	skill.Category = in.Category
	skill.Proficiency = in.Proficiency
	skill.UpdatedAt = s.now()
	if err := s.skillRepository.Update(ctx, skill); err != nil {
		return nil, skillError(err)
	}
	return skill, nil
}

func (s *SkillService) Delete(ctx context.Context, userID, id string) error {
	return skillError(s.skillRepository.Delete(ctx, userID, id))
}

func skillError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Skill")
	}
	return err
}
