package persistence

import (
	"context"
	"database/sql"

	"github.com/SkylarKelty/Rapid/internal/infrastructure/database"
	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/SkylarKelty/Rapid/pkg/models"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

// Store runs table-level CRUD against one connection (or one transaction on
// it), mapping rows to generic records or to models.
//
// Statements commit independently unless run through WithTransaction. In
// particular UpdateOrInsert is a read followed by a write: two concurrent
// callers with the same search parameters can both see no match and both
// insert. Use UpdateOrInsertTx when that matters.
type Store struct {
	conn    *database.Connection
	q       database.Querier
	builder *query.Builder
}

// NewStore creates a Store over conn
func NewStore(conn *database.Connection) *Store {
	return &Store{
		conn:    conn,
		q:       conn,
		builder: query.NewBuilder(conn.Dialect()),
	}
}

// Connection returns the underlying connection handle
func (s *Store) Connection() *database.Connection {
	return s.conn
}

// Builder returns the statement builder for the connection's dialect
func (s *Store) Builder() *query.Builder {
	return s.builder
}

// Execute runs a statement template. {table} placeholders are resolved; a
// single query.Params argument binds :name parameters, otherwise arguments
// are positional.
func (s *Store) Execute(ctx context.Context, template string, args ...interface{}) (sql.Result, error) {
	return s.q.Exec(ctx, template, args...)
}

// GetRecordsSQL runs a query template and returns every row
func (s *Store) GetRecordsSQL(ctx context.Context, template string, args ...interface{}) (*RowSet, error) {
	rows, err := s.q.Query(ctx, template, args...)
	if err != nil {
		return nil, err
	}
	rs, err := scanRows(rows)
	if err != nil {
		return nil, apperrors.NewDatabaseError("fetch", template, "", err)
	}
	return rs, nil
}

func (s *Store) run(ctx context.Context, stmt query.Statement) (*RowSet, error) {
	return s.GetRecordsSQL(ctx, stmt.SQL, stmt.Args)
}

// GetRecords returns the rows of table matching every key of params.
// Empty params match all rows. fields restricts the selected columns.
func (s *Store) GetRecords(ctx context.Context, table string, params query.Params, fields ...string) (*RowSet, error) {
	stmt, err := s.builder.Select(table, params, fields)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, stmt)
}

// single enforces the point-lookup contract: nil for no row, an error for many
func single(operation string, rs *RowSet) (models.Row, error) {
	switch rs.Len() {
	case 0:
		return nil, nil
	case 1:
		return rs.Rows[0], nil
	default:
		return nil, apperrors.NewMultipleResultsError(operation, rs.Len())
	}
}

// GetRecord returns the single row matching params, or nil when nothing
// matches. More than one match is a MultipleResultsError.
func (s *Store) GetRecord(ctx context.Context, table string, params query.Params) (models.Row, error) {
	rs, err := s.GetRecords(ctx, table, params)
	if err != nil {
		return nil, err
	}
	return single("get_record", rs)
}

// GetField returns one column of the single row matching params; nil when
// there is no such row
func (s *Store) GetField(ctx context.Context, table, field string, params query.Params) (interface{}, error) {
	rs, err := s.GetRecords(ctx, table, params, field)
	if err != nil {
		return nil, err
	}
	row, err := single("get_field", rs)
	if err != nil || row == nil {
		return nil, err
	}
	return row[field], nil
}

// GetFieldset returns one column from every row matching params
func (s *Store) GetFieldset(ctx context.Context, table, field string, params query.Params) ([]interface{}, error) {
	rs, err := s.GetRecords(ctx, table, params, field)
	if err != nil {
		return nil, err
	}
	return rs.Column(field), nil
}

// InsertRecord inserts one row and returns the id the backend assigned
func (s *Store) InsertRecord(ctx context.Context, table string, params query.Params) (int64, error) {
	if len(params) == 0 {
		return 0, apperrors.NewEmptyParamsError("insert_record")
	}

	stmt, err := s.builder.Insert(table, params)
	if err != nil {
		return 0, err
	}

	if !s.q.Dialect().LastInsertID {
		return s.insertReturning(ctx, stmt)
	}

	res, err := s.q.Exec(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewDatabaseError("insert", stmt.SQL, "", err)
	}
	return id, nil
}

// insertReturning reads the generated id back with RETURNING for drivers
// without LastInsertId
func (s *Store) insertReturning(ctx context.Context, stmt query.Statement) (int64, error) {
	sqlText := stmt.SQL + " RETURNING " + s.q.Dialect().Quote(query.IDColumn)

	rs, err := s.GetRecordsSQL(ctx, sqlText, stmt.Args)
	if err != nil {
		return 0, err
	}
	row := rs.First()
	if row == nil {
		return 0, apperrors.NewNoResultError(stmt.SQL)
	}
	return row.GetInt(query.IDColumn), nil
}

// InsertRecords inserts every row in one statement. All rows must share the
// first row's columns. Returns the number of rows inserted.
func (s *Store) InsertRecords(ctx context.Context, table string, rows []query.Params) (int64, error) {
	stmt, err := s.builder.InsertBatch(table, rows)
	if err != nil {
		return 0, err
	}

	res, err := s.q.Exec(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, stmt.SQL)
}

// UpdateRecord updates the row whose id is params["id"] with every other key.
// It returns the number of rows matched, so callers can tell a missing id from
// a successful update.
func (s *Store) UpdateRecord(ctx context.Context, table string, params query.Params) (int64, error) {
	stmt, err := s.builder.Update(table, params)
	if err != nil {
		return 0, err
	}

	res, err := s.q.Exec(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, stmt.SQL)
}

// UpsertResult reports what UpdateOrInsert did
type UpsertResult struct {
	Inserted bool
	// ID is the updated row's id, or the generated id of the inserted row
	ID interface{}
	// RowsAffected is the update's matched-row count; 1 for an insert
	RowsAffected int64
}

// UpdateOrInsert updates the single row matching search with params, or
// inserts params when nothing matches. More than one match is a
// MultipleResultsError. Not atomic; see Store.
func (s *Store) UpdateOrInsert(ctx context.Context, table string, search, params query.Params) (UpsertResult, error) {
	return s.updateOrInsert(ctx, table, search, params)
}

// UpdateOrInsertTx is UpdateOrInsert inside a SERIALIZABLE transaction with
// the lookup taking row locks where the dialect supports them. SQLite
// transactions are always serializable and take no isolation option.
func (s *Store) UpdateOrInsertTx(ctx context.Context, table string, search, params query.Params) (UpsertResult, error) {
	opts := &sql.TxOptions{}
	if s.builder.Dialect().RowLocks {
		opts.Isolation = sql.LevelSerializable
	}

	var result UpsertResult
	err := s.WithTransaction(ctx, opts, func(tx *Store) error {
		var err error
		result, err = tx.updateOrInsert(ctx, table, search, params, query.ForUpdate())
		return err
	})
	return result, err
}

func (s *Store) updateOrInsert(ctx context.Context, table string, search, params query.Params, opts ...query.SelectOption) (UpsertResult, error) {
	stmt, err := s.builder.Select(table, search, nil, opts...)
	if err != nil {
		return UpsertResult{}, err
	}
	rs, err := s.run(ctx, stmt)
	if err != nil {
		return UpsertResult{}, err
	}

	existing, err := single("update_or_insert", rs)
	if err != nil {
		return UpsertResult{}, err
	}

	if existing != nil {
		id, ok := existing.ID()
		if !ok {
			return UpsertResult{}, apperrors.NewMissingIdentifierError("update_or_insert")
		}
		update := params.Clone()
		update[query.IDColumn] = id

		n, err := s.UpdateRecord(ctx, table, update)
		if err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{ID: id, RowsAffected: n}, nil
	}

	id, err := s.InsertRecord(ctx, table, params)
	if err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{Inserted: true, ID: id, RowsAffected: 1}, nil
}

// DeleteRecords deletes the rows matching params. Empty params are refused;
// use Truncate to clear a table.
func (s *Store) DeleteRecords(ctx context.Context, table string, params query.Params) (int64, error) {
	stmt, err := s.builder.Delete(table, params)
	if err != nil {
		return 0, err
	}

	res, err := s.q.Exec(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, stmt.SQL)
}

// CountRecords counts the rows matching params. A COUNT that yields no row
// at all means the statement itself is wrong and is a NoResultError.
func (s *Store) CountRecords(ctx context.Context, table string, params query.Params) (int64, error) {
	stmt, err := s.builder.Count(table, params)
	if err != nil {
		return 0, err
	}

	rows, err := s.q.Query(ctx, stmt.SQL, stmt.Args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, apperrors.NewDatabaseError("count", stmt.SQL, "", err)
		}
		return 0, apperrors.NewNoResultError(table)
	}

	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, apperrors.NewDatabaseError("count", stmt.SQL, "", err)
	}
	return count, nil
}

// Truncate removes every row of table. There is no confirmation step.
func (s *Store) Truncate(ctx context.Context, table string) error {
	stmt, err := s.builder.Truncate(table)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, stmt.SQL)
	return err
}

// WithTransaction runs fn with a Store bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
// Transactions do not nest: calling WithTransaction on the Store passed to fn
// opens a second, independent transaction.
func (s *Store) WithTransaction(ctx context.Context, opts *sql.TxOptions, fn func(tx *Store) error) error {
	return s.conn.WithTransaction(ctx, opts, func(tx *database.Tx) error {
		return fn(&Store{conn: s.conn, q: tx, builder: s.builder})
	})
}

func rowsAffected(res sql.Result, sqlText string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewDatabaseError("rows affected", sqlText, "", err)
	}
	return n, nil
}
