package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/SkylarKelty/Rapid/internal/config"
	"github.com/SkylarKelty/Rapid/internal/logging"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

// Opener opens the underlying *sql.DB for a configuration. It is swappable so
// Reset can be exercised without a live server.
type Opener func(ctx context.Context, cfg config.DatabaseConfig, dialect query.Dialect) (*sql.DB, error)

// Querier is what the persistence layer executes statements against: either
// the Connection itself or a transaction opened on it.
type Querier interface {
	Exec(ctx context.Context, template string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, template string, args ...interface{}) (*sqlx.Rows, error)
	Dialect() query.Dialect
}

// Connection is the process's handle on one database. It owns the DSN,
// credentials and table prefix, and resolves {table} placeholders in every
// statement it runs.
// Note: sql.DB pools connections internally. Reset and Close swap the pool and
// must not run concurrently with statements.
type Connection struct {
	cfg     config.DatabaseConfig
	dialect query.Dialect
	tables  query.Tables
	opener  Opener
	logger  *slog.Logger

	db      *sqlx.DB
	session string
}

// Option configures a Connection
type Option func(*Connection)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) { c.logger = logger }
}

// WithOpener replaces the driver opener
func WithOpener(opener Opener) Option {
	return func(c *Connection) { c.opener = opener }
}

// Open connects to the database described by cfg and pings it
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Connection, error) {
	cfg.ApplyDefaults()
	dialect, err := query.DialectFor(cfg.Engine)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		cfg:     cfg,
		dialect: dialect,
		tables:  query.Tables{Prefix: cfg.TablePrefix},
		opener:  openDB,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// New wraps an already open *sql.DB. Reset is not available on such a
// connection unless an Opener is supplied.
func New(db *sql.DB, dialect query.Dialect, prefix string, opts ...Option) *Connection {
	c := &Connection{
		dialect: dialect,
		tables:  query.Tables{Prefix: prefix},
		logger:  logging.Discard(),
		db:      sqlx.NewDb(db, dialect.DriverName),
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// openDB opens and configures the pool
func openDB(ctx context.Context, cfg config.DatabaseConfig, dialect query.Dialect) (*sql.DB, error) {
	dsn, err := DSN(cfg, dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory sqlite database exists per connection, so sqlite gets exactly one.
	if dialect.Name == query.SQLite.Name {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (c *Connection) connect(ctx context.Context) error {
	if c.opener == nil {
		return fmt.Errorf("connection has no opener; it was created from an existing handle")
	}

	db, err := c.opener(ctx, c.cfg, c.dialect)
	if err != nil {
		return err
	}

	c.db = sqlx.NewDb(db, c.dialect.DriverName)
	c.session = uuid.NewString()
	c.logger.Info("database connection established",
		"engine", c.dialect.Name,
		"host", c.cfg.Host,
		"database", c.cfg.Name,
		"prefix", c.tables.Prefix,
		"session", c.session)
	return nil
}

// Reset drops the current pool and reconnects with the stored configuration.
// Any transaction in progress on the old pool is lost.
func (c *Connection) Reset(ctx context.Context) error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Warn("error closing connection during reset", "session", c.session, "error", err)
		}
		c.db = nil
	}
	return c.connect(ctx)
}

// Close closes the database connection
func (c *Connection) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Dialect returns the engine dialect
func (c *Connection) Dialect() query.Dialect {
	return c.dialect
}

// Tables returns the table-name resolver
func (c *Connection) Tables() query.Tables {
	return c.tables
}

// Session identifies the current underlying pool; it changes on Reset
func (c *Connection) Session() string {
	return c.session
}

func (c *Connection) handle() (*sqlx.DB, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database connection is not open")
	}
	return c.db, nil
}

// Bind resolves table placeholders and turns the arguments into driver
// arguments. A single query.Params (or map[string]interface{}) argument binds
// :name parameters by name; anything else is bound positionally. Colons
// inside quoted literals and quoted identifiers are left as written.
func (c *Connection) Bind(template string, args ...interface{}) (string, []interface{}, error) {
	sqlText := c.tables.Substitute(template)

	if len(args) == 1 {
		var named map[string]interface{}
		isNamed := true
		switch p := args[0].(type) {
		case query.Params:
			named = p
		case map[string]interface{}:
			named = p
		default:
			isNamed = false
		}
		if isNamed {
			bound, values, err := sqlx.Named(escapeQuoted(sqlText, c.dialect.BackslashEscapes), named)
			if err != nil {
				return "", nil, wrapError("bind", sqlText, err)
			}
			return c.rebind(bound), values, nil
		}
	}

	return c.rebind(sqlText), args, nil
}

// escapeQuoted doubles every ':' that sits inside a quoted string or quoted
// identifier. sqlx.Named reads "::" as a literal colon, so only the unquoted
// :name tokens become parameters. A doubled quote character inside a literal
// closes and reopens it, which leaves the scan in the same state.
func escapeQuoted(sqlText string, backslashEscapes bool) string {
	if !strings.ContainsAny(sqlText, "'\"`") {
		return sqlText
	}

	var b strings.Builder
	b.Grow(len(sqlText) + 8)

	var quote byte
	for i := 0; i < len(sqlText); i++ {
		ch := sqlText[i]
		switch {
		case quote == 0:
			if ch == '\'' || ch == '"' || ch == '`' {
				quote = ch
			}
		case ch == quote:
			quote = 0
		case ch == '\\' && backslashEscapes && quote != '`' && i+1 < len(sqlText):
			b.WriteByte(ch)
			i++
			ch = sqlText[i]
			if ch == ':' {
				b.WriteByte(':')
			}
		case ch == ':':
			b.WriteByte(':')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// rebind converts ? placeholders to the dialect's bindvar style
func (c *Connection) rebind(sqlText string) string {
	return sqlx.Rebind(sqlx.BindType(c.dialect.DriverName), sqlText)
}

// Exec executes a statement that returns no rows
func (c *Connection) Exec(ctx context.Context, template string, args ...interface{}) (sql.Result, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	return c.exec(ctx, db, template, args)
}

// Query executes a statement that returns rows
func (c *Connection) Query(ctx context.Context, template string, args ...interface{}) (*sqlx.Rows, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	return c.query(ctx, db, template, args)
}

func (c *Connection) exec(ctx context.Context, ext sqlx.ExtContext, template string, args []interface{}) (sql.Result, error) {
	sqlText, values, err := c.Bind(template, args...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := ext.ExecContext(ctx, sqlText, values...)
	c.logStatement(sqlText, template, start, err)
	if err != nil {
		return nil, wrapError("execute", sqlText, err)
	}
	return res, nil
}

func (c *Connection) query(ctx context.Context, ext sqlx.ExtContext, template string, args []interface{}) (*sqlx.Rows, error) {
	sqlText, values, err := c.Bind(template, args...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := ext.QueryxContext(ctx, sqlText, values...)
	c.logStatement(sqlText, template, start, err)
	if err != nil {
		return nil, wrapError("query", sqlText, err)
	}
	return rows, nil
}

func (c *Connection) logStatement(sqlText, template string, start time.Time, err error) {
	attrs := []any{
		"sql", sqlText,
		"tables", query.Referenced(template),
		"session", c.session,
		"elapsed", time.Since(start),
	}
	switch {
	case err == nil:
		c.logger.Debug("statement executed", attrs...)
	case isDeadlock(err):
		c.logger.Warn("statement hit a lock conflict", append(attrs, "error", err)...)
	default:
		c.logger.Debug("statement failed", append(attrs, "error", err)...)
	}
}
