package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
)

// IDColumn is the primary identifier column every table is expected to carry
const IDColumn = "id"

// QueryType represents the type of SQL statement
type QueryType string

const (
	QueryTypeSelect   QueryType = "SELECT"
	QueryTypeCount    QueryType = "COUNT"
	QueryTypeInsert   QueryType = "INSERT"
	QueryTypeUpdate   QueryType = "UPDATE"
	QueryTypeDelete   QueryType = "DELETE"
	QueryTypeTruncate QueryType = "TRUNCATE"
)

// Params maps column (or named parameter) names to bound values
type Params map[string]interface{}

// Keys returns the parameter names in sorted order
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Statement is a built SQL template plus its named arguments.
// Table references are left as {name} placeholders for the connection to resolve.
type Statement struct {
	Type QueryType
	SQL  string
	Args Params
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s can be used as a table, column or parameter name
func ValidIdentifier(s string) bool {
	return len(s) <= 64 && identifierRe.MatchString(s)
}

func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if !ValidIdentifier(name) {
			return apperrors.NewInvalidIdentifierError(name)
		}
	}
	return nil
}

// Builder generates parameterized statements for one dialect
type Builder struct {
	dialect Dialect
}

// NewBuilder creates a Builder for dialect
func NewBuilder(dialect Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// Dialect returns the builder's dialect
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

func (b *Builder) table(name string) string {
	return b.dialect.Quote(Placeholder(name))
}

// Where renders `k` = :k for every parameter joined by AND, in sorted key order.
// An empty map renders an empty string (matches every row).
func (b *Builder) Where(params Params) (string, error) {
	if len(params) == 0 {
		return "", nil
	}

	keys := params.Keys()
	if err := checkIdentifiers(keys...); err != nil {
		return "", err
	}

	clauses := make([]string, len(keys))
	for i, k := range keys {
		clauses[i] = fmt.Sprintf("%s = :%s", b.dialect.Quote(k), k)
	}
	return strings.Join(clauses, " AND "), nil
}

// SelectOption adjusts a SELECT statement
type SelectOption func(*selectOptions)

type selectOptions struct {
	forUpdate bool
}

// ForUpdate locks the matched rows for the rest of the transaction where the dialect supports it
func ForUpdate() SelectOption {
	return func(o *selectOptions) { o.forUpdate = true }
}

// Select builds SELECT fields FROM table [WHERE ...]. No fields, or a single "*", selects every column.
func (b *Builder) Select(table string, params Params, fields []string, opts ...SelectOption) (Statement, error) {
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	var o selectOptions
	for _, opt := range opts {
		opt(&o)
	}

	cols := "*"
	if len(fields) > 0 && !(len(fields) == 1 && fields[0] == "*") {
		if err := checkIdentifiers(fields...); err != nil {
			return Statement{}, err
		}
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = b.dialect.Quote(f)
		}
		cols = strings.Join(quoted, ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", cols, b.table(table))

	where, err := b.Where(params)
	if err != nil {
		return Statement{}, err
	}
	if where != "" {
		sql += " WHERE " + where
	}

	if o.forUpdate && b.dialect.RowLocks {
		sql += " FOR UPDATE"
	}

	return Statement{Type: QueryTypeSelect, SQL: sql, Args: params.Clone()}, nil
}

// Count builds SELECT COUNT(*) FROM table [WHERE ...]
func (b *Builder) Count(table string, params Params) (Statement, error) {
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", b.table(table))

	where, err := b.Where(params)
	if err != nil {
		return Statement{}, err
	}
	if where != "" {
		sql += " WHERE " + where
	}

	return Statement{Type: QueryTypeCount, SQL: sql, Args: params.Clone()}, nil
}

// Insert builds a single-row INSERT through the batch path
func (b *Builder) Insert(table string, row Params) (Statement, error) {
	if len(row) == 0 {
		return Statement{}, apperrors.NewEmptyParamsError("insert_record")
	}
	return b.InsertBatch(table, []Params{row})
}

// InsertBatch builds a multi-row INSERT. Columns come from the first row's keys,
// sorted; every other row must carry exactly the same key set. With more than
// one row each value is bound as :column_rowindex.
func (b *Builder) InsertBatch(table string, rows []Params) (Statement, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Statement{}, apperrors.NewEmptyParamsError("insert_records")
	}
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	columns := rows[0].Keys()
	if err := checkIdentifiers(columns...); err != nil {
		return Statement{}, err
	}

	for i, row := range rows[1:] {
		if !sameKeys(columns, row) {
			return Statement{}, apperrors.NewInconsistentColumnsError(i+1, columns, row.Keys())
		}
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.dialect.Quote(c)
	}

	args := make(Params, len(columns)*len(rows))
	tuples := make([]string, len(rows))
	for i, row := range rows {
		names := make([]string, len(columns))
		for j, c := range columns {
			name := c
			if len(rows) > 1 {
				name = fmt.Sprintf("%s_%d", c, i)
			}
			names[j] = ":" + name
			args[name] = row[c]
		}
		tuples[i] = "(" + strings.Join(names, ", ") + ")"
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		b.table(table),
		strings.Join(quoted, ", "),
		strings.Join(tuples, ", "))

	return Statement{Type: QueryTypeInsert, SQL: sql, Args: args}, nil
}

func sameKeys(columns []string, row Params) bool {
	if len(row) != len(columns) {
		return false
	}
	for _, c := range columns {
		if _, ok := row[c]; !ok {
			return false
		}
	}
	return true
}

// Update builds UPDATE table SET ... WHERE `id` = :id. The id parameter is the
// only predicate; every other key becomes an assignment.
func (b *Builder) Update(table string, params Params) (Statement, error) {
	if _, ok := params[IDColumn]; !ok {
		return Statement{}, apperrors.NewMissingIdentifierError("update_record")
	}
	if len(params) == 1 {
		return Statement{}, apperrors.NewEmptyParamsError("update_record")
	}
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	keys := params.Keys()
	if err := checkIdentifiers(keys...); err != nil {
		return Statement{}, err
	}

	sets := make([]string, 0, len(keys)-1)
	for _, k := range keys {
		if k == IDColumn {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", b.dialect.Quote(k), k))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = :%s",
		b.table(table),
		strings.Join(sets, ", "),
		b.dialect.Quote(IDColumn), IDColumn)

	return Statement{Type: QueryTypeUpdate, SQL: sql, Args: params.Clone()}, nil
}

// Delete builds DELETE FROM table WHERE .... An empty filter is rejected so a
// whole table can never be cleared through this path; use Truncate for that.
func (b *Builder) Delete(table string, params Params) (Statement, error) {
	if len(params) == 0 {
		return Statement{}, apperrors.NewEmptyParamsError("delete_records")
	}
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}

	where, err := b.Where(params)
	if err != nil {
		return Statement{}, err
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", b.table(table), where)
	return Statement{Type: QueryTypeDelete, SQL: sql, Args: params.Clone()}, nil
}

// Truncate builds the dialect's unconditional table clear
func (b *Builder) Truncate(table string) (Statement, error) {
	if err := checkIdentifiers(table); err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf(b.dialect.truncate, b.table(table))
	return Statement{Type: QueryTypeTruncate, SQL: sql, Args: Params{}}, nil
}
