package models

import (
	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
	base "github.com/SkylarKelty/Rapid/pkg/models"
)

// WidgetSchema backs the "widgets" table. serial is assigned on creation and
// can only change through a trusted (forced) hydration.
var WidgetSchema = base.NewSchema("Widget", "widgets").
	Field("id", fieldtypes.Int, base.Locked()).
	Field("name", fieldtypes.String, base.WithLength(32)).
	Field("price", fieldtypes.Decimal).
	Field("stock", fieldtypes.Int).
	Field("active", fieldtypes.Bool).
	Field("serial", fieldtypes.String, base.Locked()).
	Field("notes", fieldtypes.String, base.Hidden()).
	Field("updated", fieldtypes.Timestamp)

// Widget is an inventory item
type Widget struct {
	*base.Record
}

// NewWidget returns an empty Widget
func NewWidget() *Widget {
	return &Widget{Record: base.NewRecord(WidgetSchema)}
}

func (w *Widget) ID() int64      { return w.IntValue("id") }
func (w *Widget) Name() string   { return w.StringValue("name") }
func (w *Widget) Price() float64 { return w.FloatValue("price") }
func (w *Widget) Stock() int64   { return w.IntValue("stock") }
func (w *Widget) Active() bool   { return w.BoolValue("active") }
func (w *Widget) Serial() string { return w.StringValue("serial") }

// InStock reports whether the widget is active with stock on hand
func (w *Widget) InStock() bool {
	return w.Active() && w.Stock() > 0
}
