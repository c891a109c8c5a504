package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/db"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

type UserRepository interface {
	// Create inserts the user and links its initial provider atomically.
	Create(ctx context.Context, user *model.User, provider string) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmailNorm(ctx context.Context, emailNorm string) (*model.User, error)
	// LinkProvider saves display fields and adds the provider tag atomically.
	LinkProvider(ctx context.Context, user *model.User, provider string) error
	UpdatePicture(ctx context.Context, id, picture string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User, provider string) error {
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, email, email_norm, password_hash, first_name, last_name, picture, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Email,
			user.EmailNorm,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Picture,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return linkProvider(ctx, tx, user.ID, provider, user.CreatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.Providers = []string{provider}
	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByEmailNorm(ctx context.Context, emailNorm string) (*model.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE email_norm = $1`, emailNorm)
}

func (r *userRepository) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	providers, err := r.providers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Providers = providers
	return user, nil
}

func (r *userRepository) providers(ctx context.Context, userID string) ([]string, error) {
	providers := []string{}
	query := `SELECT provider FROM user_providers WHERE user_id = $1 ORDER BY linked_at, provider`
	err := r.db.SelectContext(ctx, &providers, query, userID)
	return providers, err
}

func (r *userRepository) LinkProvider(ctx context.Context, user *model.User, provider string) error {
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Only blank fields are filled; values written since the caller read
		// the user are kept.
		query := `
			UPDATE users SET
				first_name = CASE WHEN first_name = '' THEN $1 ELSE first_name END,
				last_name = CASE WHEN last_name = '' THEN $2 ELSE last_name END,
				picture = CASE WHEN picture = '' THEN $3 ELSE picture END,
				updated_at = $4
			WHERE id = $5
		`
		res, err := tx.ExecContext(ctx, query, user.FirstName, user.LastName, user.Picture, user.UpdatedAt, user.ID)
		if err != nil {
			return err
		}
		if err := rowsAffected(res, ErrUserNotFound); err != nil {
			return err
		}

		err = tx.QueryRowxContext(ctx, `SELECT first_name, last_name, picture FROM users WHERE id = $1`, user.ID).
			Scan(&user.FirstName, &user.LastName, &user.Picture)
		if err != nil {
			return err
		}
		return linkProvider(ctx, tx, user.ID, provider, user.UpdatedAt)
	})
	if err != nil {
		return err
	}

	if !user.HasProvider(provider) {
		user.Providers = append(user.Providers, provider)
	}
	return nil
}

func (r *userRepository) UpdatePicture(ctx context.Context, id, picture string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET picture = $1, updated_at = $2 WHERE id = $3`, picture, at, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrUserNotFound)
}

// Delete hard-deletes the user. Dependent rows go with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, ErrUserNotFound)
}

