package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/db/dbtest"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		EmailNorm: email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seedUser(t *testing.T, conn *sqlx.DB, email string) *model.User {
	t.Helper()
	user := newUser(email)
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), user, model.ProviderLocal))
	return user
}

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return dbtest.New(t)
}
