package query

import (
	"fmt"
	"strings"
)

// Dialect captures the per-engine differences the builder has to care about
type Dialect struct {
	Name string
	// DriverName is the database/sql driver registered for the engine
	DriverName string
	quote      string
	// Truncate is the statement format used to clear a table
	truncate string
	// LastInsertID reports whether sql.Result.LastInsertId works for the driver;
	// otherwise inserts use RETURNING.
	LastInsertID bool
	// RowLocks reports whether SELECT ... FOR UPDATE is supported
	RowLocks bool
	// BackslashEscapes reports whether a backslash escapes the next character
	// inside a quoted string
	BackslashEscapes bool
}

var (
	MySQL = Dialect{
		Name:             "mysql",
		DriverName:       "mysql",
		quote:            "`",
		truncate:         "TRUNCATE %s",
		LastInsertID:     true,
		RowLocks:         true,
		BackslashEscapes: true,
	}

	SQLite = Dialect{
		Name:         "sqlite",
		DriverName:   "sqlite",
		quote:        "`",
		truncate:     "DELETE FROM %s",
		LastInsertID: true,
	}

	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		quote:      `"`,
		truncate:   "TRUNCATE %s",
		RowLocks:   true,
	}
)

// DialectFor resolves an engine name as it appears in configuration
func DialectFor(engine string) (Dialect, error) {
	switch strings.ToLower(engine) {
	case "mysql", "mariadb", "tidb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgsql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database engine %q", engine)
	}
}

// Quote wraps an identifier in the dialect's quote character.
// Callers must have checked the identifier with ValidIdentifier.
func (d Dialect) Quote(ident string) string {
	q := d.quote
	if q == "" {
		q = "`"
	}
	return q + ident + q
}
