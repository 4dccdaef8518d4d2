// Package migrations holds the embedded goose migrations: plain SQL files for
// schema that is portable across drivers, and Go migrations for the parts
// that are not.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
