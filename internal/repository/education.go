package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

type EducationRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Education, error)
	ByID(ctx context.Context, userID, id string) (*model.Education, error)
	Create(ctx context.Context, e *model.Education) error
	Update(ctx context.Context, e *model.Education) error
	Delete(ctx context.Context, userID, id string) error
}

type educationRepository struct {
	db *sqlx.DB
}

func NewEducationRepository(db *sqlx.DB) EducationRepository {
	return &educationRepository{db: db}
}

func (r *educationRepository) ListByUser(ctx context.Context, userID string) ([]model.Education, error) {
	entries := []model.Education{}
	err := r.db.SelectContext(ctx, &entries, `SELECT * FROM education WHERE user_id = $1`, userID)
	return entries, err
}

func (r *educationRepository) ByID(ctx context.Context, userID, id string) (*model.Education, error) {
	var e model.Education
	err := r.db.GetContext(ctx, &e, `SELECT * FROM education WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *educationRepository) Create(ctx context.Context, e *model.Education) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO education (
			id, user_id, institution, degree_type, field_of_study, level, start_date, graduation_date,
			currently_enrolled, gpa, gpa_private, honors, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.Institution,
		e.DegreeType,
		e.FieldOfStudy,
		e.Level,
		e.StartDate,
		e.GraduationDate,
		e.CurrentlyEnrolled,
		e.GPA,
		e.GPAPrivate,
		e.Honors,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *educationRepository) Update(ctx context.Context, e *model.Education) error {
	query := `
		UPDATE education
		SET institution = $1, degree_type = $2, field_of_study = $3, level = $4, start_date = $5,
			graduation_date = $6, currently_enrolled = $7, gpa = $8, gpa_private = $9, honors = $10, updated_at = $11
		WHERE id = $12 AND user_id = $13
	`
	res, err := r.db.ExecContext(ctx, query,
		e.Institution,
		e.DegreeType,
		e.FieldOfStudy,
		e.Level,
		e.StartDate,
		e.GraduationDate,
		e.CurrentlyEnrolled,
		e.GPA,
		e.GPAPrivate,
		e.Honors,
		e.UpdatedAt,
		e.ID,
		e.UserID,
	)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrNotFound)
}

func (r *educationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM education WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrNotFound)
}
