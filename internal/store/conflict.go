package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/zeebo/errs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/joestump/joe-bookmarks/internal/apperr"
)

// isWriteConflict reports whether err means another transaction got in the
// way and the whole transaction can safely be run again.
func isWriteConflict(err error) bool {
	if err == nil {
		return false
	}
	return errs.IsFunc(err, func(err error) bool {
		switch e := err.(type) {
		case *sqlite.Error:
			return isSQLiteConflictCode(e.Code())
		case *pq.Error:
			return isSerializationCode(string(e.Code))
		case *pgconn.PgError:
			return isSerializationCode(e.Code)
		case *mysql.MySQLError:
			// 1213: deadlock found, 1205: lock wait timeout.
			return e.Number == 1213 || e.Number == 1205
		}
		return false
	})
}

// isSQLiteConflictCode matches SQLITE_BUSY and SQLITE_LOCKED, extended codes
// included.
func isSQLiteConflictCode(code int) bool {
	code &= 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// isSerializationCode matches serialization_failure and deadlock_detected.
func isSerializationCode(code string) bool {
	return code == "40001" || code == "40P01"
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}

// hasKind reports whether err already carries an *apperr.Error.
func hasKind(err error) bool {
	var ae *apperr.Error
	return errors.As(err, &ae)
}
