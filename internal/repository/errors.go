package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotFound        = errors.New("record not found")
	ErrLastEntry       = errors.New("cannot delete the only remaining entry")
	ErrDuplicateSkill  = errors.New("skill already exists for user")
)

// isUniqueViolation reports whether err is a unique constraint failure on
// either supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}

// linkProvider adds a provider tag to a user. Linking twice is a no-op.
func linkProvider(ctx context.Context, ext sqlx.ExtContext, userID, provider string, at time.Time) error {
	query := `
		INSERT INTO user_providers (user_id, provider, linked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, provider) DO NOTHING
	`
	_, err := ext.ExecContext(ctx, query, userID, provider, at)
	return err
}

// invalidateResetTokens marks every unused reset token of a user as used.
func invalidateResetTokens(ctx context.Context, ext sqlx.ExtContext, userID string, at time.Time) error {
	query := `UPDATE password_reset_tokens SET used_at = $1 WHERE user_id = $2 AND used_at IS NULL`
	_, err := ext.ExecContext(ctx, query, at, userID)
	return err
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
