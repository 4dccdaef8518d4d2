package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-bookmarks/internal/db"
)

// NewTestDB opens a SQLite database in a per-test temp directory and runs all
// goose migrations. A file (rather than :memory:) lets every pool connection
// see the same data with WAL and immediate write locks, so concurrency tests
// exercise the same locking the server uses.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	conn, err := db.New("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(conn, "sqlite3"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return conn
}
