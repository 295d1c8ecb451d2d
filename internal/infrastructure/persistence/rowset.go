package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SkylarKelty/Rapid/pkg/models"
)

// RowSet is an ordered result set. Rows keep the order the database returned
// them in; ByID gives the id-keyed view on request.
type RowSet struct {
	Columns []string
	Rows    []models.Row
}

// Len returns the number of rows
func (rs *RowSet) Len() int {
	return len(rs.Rows)
}

// First returns the first row, or nil for an empty set
func (rs *RowSet) First() models.Row {
	if len(rs.Rows) == 0 {
		return nil
	}
	return rs.Rows[0]
}

// Column returns the values of one column across all rows
func (rs *RowSet) Column(name string) []interface{} {
	out := make([]interface{}, len(rs.Rows))
	for i, row := range rs.Rows {
		out[i] = row[name]
	}
	return out
}

// ByID keys the rows that carry an id column by that id (rendered as a
// string). When several rows share an id the last one wins.
func (rs *RowSet) ByID() map[string]models.Row {
	out := make(map[string]models.Row, len(rs.Rows))
	for _, row := range rs.Rows {
		if id, ok := row.ID(); ok {
			out[fmt.Sprint(id)] = row
		}
	}
	return out
}

// scanRows reads every row into a RowSet and closes rows
func scanRows(rows *sqlx.Rows) (*RowSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &RowSet{Columns: columns, Rows: make([]models.Row, 0)}
	for rows.Next() {
		record := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(record); err != nil {
			return nil, err
		}
		for col, val := range record {
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, models.Row(record))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
