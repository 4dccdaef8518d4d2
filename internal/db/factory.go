package db

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// New opens a database handle for the given driver and DSN.
// Supported drivers: sqlite3, postgres (lib/pq), pgx (jackc/pgx), mysql.
//
// The handle is created once at startup and passed to every store; nothing
// in the application reaches for a process-wide connection.
func New(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite3":
		// modernc/sqlite registers itself as "sqlite" (CGO-free).
		db, err := sqlx.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		return db, nil
	case "postgres":
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	case "pgx":
		// sqlx has no bindvar entry for "pgx"; register it as $N.
		sqlx.BindDriver("pgx", sqlx.DOLLAR)
		db, err := sqlx.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open pgx: %w", err)
		}
		return db, nil
	case "mysql":
		db, err := sqlx.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB driver %q: must be sqlite3, postgres, pgx, or mysql", driver)
	}
}

// SQLiteBusyTimeout is how long a connection waits inside SQLite for a held
// write lock before BEGIN fails with SQLITE_BUSY. The busy handler does not
// watch the context, so it stays short and the store's retry loop, which
// does, handles longer waits.
const SQLiteBusyTimeout = 100 * time.Millisecond

// sqliteDSN adds the pragmas every connection in the pool needs. Writers take
// the lock at BEGIN (_txlock=immediate) and briefly wait for it, and foreign
// keys are enforced.
func sqliteDSN(dsn string) string {
	var extra []string
	if !strings.Contains(dsn, "busy_timeout") {
		extra = append(extra, fmt.Sprintf("_pragma=busy_timeout(%d)", SQLiteBusyTimeout.Milliseconds()))
	}
	if !strings.Contains(dsn, "foreign_keys") {
		extra = append(extra, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "_txlock") {
		extra = append(extra, "_txlock=immediate")
	}
	if len(extra) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}
