// Package session binds browsers to authenticated identities through an
// opaque, signed cookie that references a server-side session record.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/model"
)

// ErrNotFound is returned for unknown and expired sessions alike.
var ErrNotFound = errors.New("session not found")

// Store persists session records. Implementations must treat expired
// records as absent.
type Store interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
