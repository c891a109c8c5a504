package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

type SkillRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Skill, error)
	ByID(ctx context.Context, userID, id string) (*model.Skill, error)
	Create(ctx context.Context, s *model.Skill) error
	Update(ctx context.Context, s *model.Skill) error
	Delete(ctx context.Context, userID, id string) error
}

type skillRepository struct {
	db *sqlx.DB
}

func NewSkillRepository(db *sqlx.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) ListByUser(ctx context.Context, userID string) ([]model.Skill, error) {
	skills := []model.Skill{}
	query := `SELECT * FROM skills WHERE user_id = $1 ORDER BY category, normalized_name`
	err := r.db.SelectContext(ctx, &skills, query, userID)
	return skills, err
}

func (r *skillRepository) ByID(ctx context.Context, userID, id string) (*model.Skill, error) {
	var s model.Skill
	err := r.db.GetContext(ctx, &s, `SELECT * FROM skills WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *skillRepository) Create(ctx context.Context, s *model.Skill) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	query := `
		INSERT INTO skills (id, user_id, name, normalized_name, category, proficiency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.Name,
		s.NormalizedName,
		s.Category,
		s.Proficiency,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateSkill
	}
	return err
}

func (r *skillRepository) Update(ctx context.Context, s *model.Skill) error {
	query := `UPDATE skills SET category = $1, proficiency = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`
	res, err := r.db.ExecContext(ctx, query, s.Category, s.Proficiency, s.UpdatedAt, s.ID, s.UserID)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrNotFound)
}

func (r *skillRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrNotFound)
}
