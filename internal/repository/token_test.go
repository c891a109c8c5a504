package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/db/dbtest"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_IssueSupersedesPrevious(t *testing.T) {
	conn := testDB(t)
	repo := NewTokenRepository(conn)
	ctx := context.Background()
	user := seedUser(t, conn, "a@x.com")
	now := time.Now().UTC()

	first := &model.PasswordResetToken{UserID: user.ID, TokenHash: "h1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, repo.Issue(ctx, first))
	second := &model.PasswordResetToken{UserID: user.ID, TokenHash: "h2", ExpiresAt: now.Add(time.Hour), CreatedAt: now.Add(time.Second)}
	require.NoError(t, repo.Issue(ctx, second))

	got1, err := repo.ByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got1.IsUsed())

	got2, err := repo.ByHash(ctx, "h2")
	require.NoError(t, err)
	assert.False(t, got2.IsUsed())
}

func TestTokenRepository_RedeemOnce(t *testing.T) {
	conn := testDB(t)
	repo := NewTokenRepository(conn)
	users := NewUserRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("oauth@x.com")
	require.NoError(t, users.Create(ctx, user, model.ProviderGoogle))

	token := &model.PasswordResetToken{UserID: user.ID, TokenHash: "h1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, repo.Issue(ctx, token))

	require.NoError(t, repo.Redeem(ctx, token, "new-hash", now))

	got, err := users.ByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.HasPassword())
	assert.Equal(t, "new-hash", *got.PasswordHash)
	assert.ElementsMatch(t, []string{model.ProviderGoogle, model.ProviderLocal}, got.Providers)

	err = repo.Redeem(ctx, token, "other-hash", now)
	assert.ErrorIs(t, err, ErrTokenUsed)

	got, err = users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", *got.PasswordHash)
}

func TestTokenRepository_ByHashNotFound(t *testing.T) {
	_, err := NewTokenRepository(testDB(t)).ByHash(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	conn := testDB(t)
	repo := NewTokenRepository(conn)
	ctx := context.Background()
	user := seedUser(t, conn, "a@x.com")
	now := time.Now().UTC()

	require.NoError(t, repo.Issue(ctx, &model.PasswordResetToken{UserID: user.ID, TokenHash: "old", ExpiresAt: now.Add(-2 * time.Hour), CreatedAt: now.Add(-3 * time.Hour)}))
	require.NoError(t, repo.Issue(ctx, &model.PasswordResetToken{UserID: user.ID, TokenHash: "new", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.ByHash(ctx, "new")
	assert.NoError(t, err)
}

func TestTokenRepository_ConcurrentIssueAndSessionWrites(t *testing.T) {
	conn := dbtest.NewFile(t)
	tokens := NewTokenRepository(conn)
	sessions := NewSessionRepository(conn)
	ctx := context.Background()
	user := seedUser(t, conn, "a@x.com")
	now := time.Now().UTC()

	const writers = 40
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				errs <- tokens.Issue(ctx, &model.PasswordResetToken{
					UserID:    user.ID,
					TokenHash: fmt.Sprintf("hash-%d", i),
					ExpiresAt: now.Add(time.Hour),
					CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
				})
				return
			}
			errs <- sessions.Create(ctx, &model.Session{
				ID:        fmt.Sprintf("s%d", i),
				UserID:    user.ID,
				Email:     user.Email,
				CreatedAt: now,
				ExpiresAt: now.Add(time.Hour),
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var live int
	require.NoError(t, conn.GetContext(ctx, &live, `SELECT COUNT(*) FROM password_reset_tokens WHERE used_at IS NULL`))
	assert.Equal(t, 1, live)

	var count int
	require.NoError(t, conn.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`))
	assert.Equal(t, writers/2, count)
}
