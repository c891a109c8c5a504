// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/db"
)

// New opens a migrated in-memory database that is closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	return open(t, ":memory:?_pragma=foreign_keys(1)")
}

// NewFile opens a migrated database file in a temp dir with a full
// connection pool, for tests that exercise concurrent writers.
func NewFile(t testing.TB) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	return open(t, path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
}

func open(t testing.TB, connection string) *sqlx.DB {
	t.Helper()

	conn, err := db.Init("sqlite", connection, 5*time.Second)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	err = db.RunMigrations(context.Background(), conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}
