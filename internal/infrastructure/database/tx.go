package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SkylarKelty/Rapid/pkg/query"
)

// Tx is a transaction opened on a Connection. It binds and logs statements
// exactly like the Connection does.
type Tx struct {
	conn *Connection
	tx   *sqlx.Tx
}

// BeginTx starts a new transaction
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, wrapError("begin", "", err)
	}
	return &Tx{conn: c, tx: tx}, nil
}

// Exec executes a statement that returns no rows inside the transaction
func (t *Tx) Exec(ctx context.Context, template string, args ...interface{}) (sql.Result, error) {
	return t.conn.exec(ctx, t.tx, template, args)
}

// Query executes a statement that returns rows inside the transaction
func (t *Tx) Query(ctx context.Context, template string, args ...interface{}) (*sqlx.Rows, error) {
	return t.conn.query(ctx, t.tx, template, args)
}

// Dialect returns the engine dialect
func (t *Tx) Dialect() query.Dialect {
	return t.conn.dialect
}

// Commit commits the transaction
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return wrapError("commit", "", err)
	}
	return nil
}

// Rollback aborts the transaction
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// WithTransaction executes fn within a database transaction.
// The transaction is rolled back if fn returns an error or panics, and
// committed if it returns nil.
func (c *Connection) WithTransaction(ctx context.Context, opts *sql.TxOptions, fn func(tx *Tx) error) error {
	tx, err := c.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
