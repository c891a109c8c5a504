package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/db"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenUsed     = errors.New("token has already been used")
)

type TokenRepository interface {
	// Issue supersedes every unused token of the user and stores the new one
	// in a single transaction.
	Issue(ctx context.Context, token *model.PasswordResetToken) error
	ByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	// Redeem consumes the token, sets the new password hash, links the local
	// provider and supersedes any other unused tokens in a single transaction.
	Redeem(ctx context.Context, token *model.PasswordResetToken, passwordHash string, now time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Issue(ctx context.Context, token *model.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := invalidateResetTokens(ctx, tx, token.UserID, token.CreatedAt)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		_, err = tx.ExecContext(ctx, query,
			token.ID,
			token.UserID,
			token.TokenHash,
			token.ExpiresAt,
			token.CreatedAt,
		)
		return err
	})
}

func (r *tokenRepository) ByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.GetContext(ctx, &t, `SELECT * FROM password_reset_tokens WHERE token_hash = $1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) Redeem(ctx context.Context, token *model.PasswordResetToken, passwordHash string, now time.Time) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Only one concurrent redemption can flip used_at
		res, err := tx.ExecContext(ctx,
			`UPDATE password_reset_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`,
			now, token.ID,
		)
		if err != nil {
			return err
		}
		if err := rowsAffected(res, ErrTokenUsed); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
			passwordHash, now, token.UserID,
		)
		if err != nil {
			return err
		}
		if err := rowsAffected(res, ErrUserNotFound); err != nil {
			return err
		}

		err = linkProvider(ctx, tx, token.UserID, model.ProviderLocal, now)
		if err != nil {
			return err
		}

		return invalidateResetTokens(ctx, tx, token.UserID, now)
	})
}

// DeleteExpired removes tokens that expired before the cutoff.
// Used tokens are kept until their natural expiry as an audit trail.
func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
