package models

import (
	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
)

// FieldDescriptor is the static metadata for one named attribute of a model
type FieldDescriptor struct {
	Name   string          `json:"name"`
	Type   fieldtypes.Type `json:"type"`
	Length int             `json:"length,omitempty"`
	Hidden bool            `json:"hidden,omitempty"`
	Locked bool            `json:"locked,omitempty"`
}

// FieldOption configures a FieldDescriptor at declaration time
type FieldOption func(*FieldDescriptor)

// WithLength sets the maximum length of a String field
func WithLength(n int) FieldOption {
	return func(f *FieldDescriptor) { f.Length = n }
}

// Hidden excludes the field from the default export
func Hidden() FieldOption {
	return func(f *FieldDescriptor) { f.Hidden = true }
}

// Locked rejects writes through Set; forced hydration still seeds it
func Locked() FieldOption {
	return func(f *FieldDescriptor) { f.Locked = true }
}

// Schema is the declared field set of a model type, shared by all its instances.
// Declare every field before the schema is handed to NewRecord; it is not
// safe to mutate a schema that instances are already reading.
type Schema struct {
	name   string
	table  string
	order  []string
	fields map[string]FieldDescriptor
}

// NewSchema creates an empty schema for the model `name` backed by `table`
// (a logical table name, without the connection prefix)
func NewSchema(name, table string) *Schema {
	return &Schema{
		name:   name,
		table:  table,
		order:  make([]string, 0),
		fields: make(map[string]FieldDescriptor),
	}
}

// Field declares a field. Re-declaring an existing name overwrites the
// descriptor but keeps its original position.
func (s *Schema) Field(name string, typ fieldtypes.Type, opts ...FieldOption) *Schema {
	desc := FieldDescriptor{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&desc)
	}

	if _, exists := s.fields[name]; !exists {
		s.order = append(s.order, name)
	}
	s.fields[name] = desc
	return s
}

// Name returns the model name
func (s *Schema) Name() string { return s.name }

// Table returns the logical backing table
func (s *Schema) Table() string { return s.table }

// Lookup returns the descriptor for name
func (s *Schema) Lookup(name string) (FieldDescriptor, bool) {
	desc, ok := s.fields[name]
	return desc, ok
}

// Fields returns the descriptors in declaration order
func (s *Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

// Columns returns the declared field names in declaration order
func (s *Schema) Columns() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
