package persistence

import (
	"context"

	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/SkylarKelty/Rapid/pkg/models"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

// GetModels fetches the rows of the model's backing table that match params
// and hydrates a fresh model from each one. Rows come from the database, so
// hydration is forced: validation and locks are skipped.
func GetModels[T models.Model](ctx context.Context, s *Store, newModel func() T, params query.Params) ([]T, error) {
	table := newModel().Schema().Table()

	rs, err := s.GetRecords(ctx, table, params)
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, rs.Len())
	for _, row := range rs.Rows {
		m := newModel()
		if err := m.Hydrate(row, true); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, nil
}

// GetModel is the point-lookup form of GetModels. It returns the zero T (nil
// for pointer models) when nothing matches and MultipleResultsError when more
// than one row does.
func GetModel[T models.Model](ctx context.Context, s *Store, newModel func() T, params query.Params) (T, error) {
	var zero T

	results, err := GetModels(ctx, s, newModel, params)
	if err != nil {
		return zero, err
	}

	switch len(results) {
	case 0:
		return zero, nil
	case 1:
		return results[0], nil
	default:
		return zero, apperrors.NewMultipleResultsError("get_model", len(results))
	}
}

// SaveModel writes a model back to its table: an update when its id is set,
// an insert otherwise. Hidden fields are included. On insert the generated id
// is seeded into the model.
func SaveModel(ctx context.Context, s *Store, m models.Model) (int64, error) {
	table := m.Schema().Table()
	values := query.Params(m.Export(true))

	id, _ := m.Get(query.IDColumn)
	if hasID(id) {
		values[query.IDColumn] = id
		return s.UpdateRecord(ctx, table, values)
	}

	delete(values, query.IDColumn)
	newID, err := s.InsertRecord(ctx, table, values)
	if err != nil {
		return 0, err
	}
	if err := m.Hydrate(map[string]interface{}{query.IDColumn: newID}, true); err != nil {
		return 0, err
	}
	return 1, nil
}

func hasID(id interface{}) bool {
	s := models.ToString(id)
	return s != "" && s != "0"
}
