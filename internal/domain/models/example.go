// Package models holds the application's concrete record types. Each one
// embeds *base.Record bound to a package-level schema, so the schema is
// declared once per type and shared by every instance.
package models

import (
	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
	base "github.com/SkylarKelty/Rapid/pkg/models"
)

// ExampleSchema backs the demo "example" table
var ExampleSchema = base.NewSchema("Example", "example").
	Field("id", fieldtypes.Int, base.Locked()).
	Field("name", fieldtypes.String, base.WithLength(255)).
	Field("description", fieldtypes.String).
	Field("enabled", fieldtypes.Bool).
	Field("created", fieldtypes.Timestamp)

// Example is the demo record shown on the forms page
type Example struct {
	*base.Record
}

// NewExample returns an empty Example
func NewExample() *Example {
	return &Example{Record: base.NewRecord(ExampleSchema)}
}

func (e *Example) ID() int64           { return e.IntValue("id") }
func (e *Example) Name() string        { return e.StringValue("name") }
func (e *Example) Description() string { return e.StringValue("description") }
func (e *Example) Enabled() bool       { return e.BoolValue("enabled") }
func (e *Example) Created() string     { return e.StringValue("created") }
