package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

type EmploymentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Employment, error)
	ByID(ctx context.Context, userID, id string) (*model.Employment, error)
	Create(ctx context.Context, e *model.Employment) error
	Update(ctx context.Context, e *model.Employment) error
	// Delete refuses with ErrLastEntry when id is the user's only entry.
	Delete(ctx context.Context, userID, id string) error
}

type employmentRepository struct {
	db *sqlx.DB
}

func NewEmploymentRepository(db *sqlx.DB) EmploymentRepository {
	return &employmentRepository{db: db}
}

func (r *employmentRepository) ListByUser(ctx context.Context, userID string) ([]model.Employment, error) {
	entries := []model.Employment{}
	err := r.db.SelectContext(ctx, &entries, `SELECT * FROM employment WHERE user_id = $1`, userID)
	return entries, err
}

func (r *employmentRepository) ByID(ctx context.Context, userID, id string) (*model.Employment, error) {
	var e model.Employment
	err := r.db.GetContext(ctx, &e, `SELECT * FROM employment WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employmentRepository) Create(ctx context.Context, e *model.Employment) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO employment (id, user_id, title, company, location, start_date, end_date, is_current, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.Title,
		e.Company,
		e.Location,
		e.StartDate,
		e.EndDate,
		e.Current,
		e.Description,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *employmentRepository) Update(ctx context.Context, e *model.Employment) error {
	query := `
		UPDATE employment
		SET title = $1, company = $2, location = $3, start_date = $4, end_date = $5, is_current = $6, description = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		e.Title,
		e.Company,
		e.Location,
		e.StartDate,
		e.EndDate,
		e.Current,
		e.Description,
		e.UpdatedAt,
		e.ID,
		e.UserID,
	)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrNotFound)
}

func (r *employmentRepository) Delete(ctx context.Context, userID, id string) error {
	// The count guard lives in the same statement so two concurrent deletes
	// cannot both pass it.
	query := `
		DELETE FROM employment
		WHERE id = $1 AND user_id = $2
		AND (SELECT COUNT(*) FROM employment WHERE user_id = $2) > 1
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Nothing deleted: either the entry is missing or it is the last one
	_, err = r.ByID(ctx, userID, id)
	if err != nil {
		return err
	}
	return ErrLastEntry
}
