package models

import (
	"encoding/json"
	"sort"
	"unicode/utf8"

	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
)

// Model is a schema-validated, in-memory representation of one row.
// Concrete models embed *Record and supply their shared Schema.
type Model interface {
	Schema() *Schema
	Get(name string) (interface{}, error)
	Set(name string, value interface{}) error
	Hydrate(row map[string]interface{}, force bool) error
	Export(includeHidden bool) map[string]interface{}
}

// Record holds the current values of one model instance
type Record struct {
	schema *Schema
	data   map[string]interface{}
}

// NewRecord creates an empty record bound to schema
func NewRecord(schema *Schema) *Record {
	return &Record{
		schema: schema,
		data:   make(map[string]interface{}),
	}
}

// Schema returns the schema the record was created with
func (r *Record) Schema() *Schema {
	return r.schema
}

// Set validates value against the declared field and stores it
func (r *Record) Set(name string, value interface{}) error {
	field, ok := r.schema.Lookup(name)
	if !ok {
		return apperrors.NewUnknownFieldError(r.schema.Name(), name)
	}

	if field.Locked {
		return apperrors.NewLockedFieldError(name)
	}

	valid, err := fieldtypes.Validate(field.Type, value)
	if err != nil {
		return err
	}
	if !valid {
		return apperrors.NewInvalidValueError(name, value, "expected "+field.Type.String())
	}

	if s, isString := value.(string); isString && field.Type == fieldtypes.String && field.Length > 0 {
		if utf8.RuneCountInString(s) > field.Length {
			return apperrors.NewInvalidValueError(name, value, "longer than declared length")
		}
	}

	r.data[name] = value
	return nil
}

// Get returns the stored value, or the type default when nothing (or NULL) is stored.
// Values seeded by forced hydration are returned even for undeclared names.
func (r *Record) Get(name string) (interface{}, error) {
	if v, ok := r.data[name]; ok && v != nil {
		return v, nil
	}

	field, ok := r.schema.Lookup(name)
	if !ok {
		return nil, apperrors.NewUnknownFieldError(r.schema.Name(), name)
	}
	return fieldtypes.DefaultValue(field.Type)
}

// Has reports whether name is a declared field
func (r *Record) Has(name string) bool {
	_, ok := r.schema.Lookup(name)
	return ok
}

// IsSet reports whether a non-nil value is stored for name
func (r *Record) IsSet(name string) bool {
	v, ok := r.data[name]
	return ok && v != nil
}

// Unset clears a stored value so Get falls back to the default
func (r *Record) Unset(name string) {
	delete(r.data, name)
}

// Hydrate populates the record from a row.
// With force every key is stored as-is, skipping validation and locks; use it
// only for rows read from the database. Without force each key goes through
// Set (in sorted key order) and the first failure is returned.
func (r *Record) Hydrate(row map[string]interface{}, force bool) error {
	if force {
		for k, v := range row {
			r.data[k] = v
		}
		return nil
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := r.Set(k, row[k]); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the field descriptors in declaration order
func (r *Record) Fields() []FieldDescriptor {
	return r.schema.Fields()
}

// Export returns every declared field with its current-or-default value.
// Hidden fields are omitted unless includeHidden is set.
//
// With includeHidden the stored values are copied over the result as they
// are, undeclared keys included, so hydrating a row and exporting it gives
// the row back. A declared field stored as nil (a NULL column) therefore
// exports as nil here while Get and Export(false) report its default; this
// keeps SaveModel from turning NULL into the default on write-back.
func (r *Record) Export(includeHidden bool) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range r.schema.Fields() {
		if field.Hidden && !includeHidden {
			continue
		}
		v, err := r.Get(field.Name)
		if err != nil {
			// declared with an unknown type; nothing sensible to export
			continue
		}
		out[field.Name] = v
	}

	if includeHidden {
		for k, v := range r.data {
			out[k] = v
		}
	}
	return out
}

// MarshalJSON encodes the public projection of the record
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Export(false))
}
