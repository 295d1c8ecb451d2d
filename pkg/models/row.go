package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SkylarKelty/Rapid/pkg/fieldtypes"
)

// Row is one fetched result row, column name to scalar value
type Row map[string]interface{}

// Helper methods for Row

func (r Row) Get(key string) interface{} {
	return r[key]
}

func (r Row) GetString(key string) string {
	return ToString(r[key])
}

func (r Row) GetInt(key string) int64 {
	return ToInt64(r[key])
}

func (r Row) GetBool(key string) bool {
	return ToBool(r[key])
}

func (r Row) GetFloat(key string) float64 {
	return ToFloat64(r[key])
}

// ID returns the row's id column and whether it is present and non-NULL
func (r Row) ID() (interface{}, bool) {
	v, ok := r["id"]
	return v, ok && v != nil
}

// Typed accessors for records. They read through Get, so unset fields
// convert from the type default, and drivers that return numbers as
// strings are handled.

func (r *Record) StringValue(name string) string {
	v, _ := r.Get(name)
	return ToString(v)
}

func (r *Record) IntValue(name string) int64 {
	v, _ := r.Get(name)
	return ToInt64(v)
}

func (r *Record) BoolValue(name string) bool {
	v, _ := r.Get(name)
	return ToBool(v)
}

func (r *Record) FloatValue(name string) float64 {
	v, _ := r.Get(name)
	return ToFloat64(v)
}

// ToString renders a scalar as a string; timestamps use the Timestamp field layout
func ToString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(fieldtypes.TimestampLayout)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToInt64 safely converts various types to int64, returning 0 when it cannot
func ToInt64(val interface{}) int64 {
	switch v := val.(type) {
	case nil:
		return 0
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		return parseIntString(string(v))
	case string:
		return parseIntString(v)
	default:
		return parseIntString(fmt.Sprintf("%v", v))
	}
}

func parseIntString(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return int64(parseFloatString(s))
	}
	return n
}

// ToFloat64 safely converts various types to float64, returning 0 when it cannot
func ToFloat64(val interface{}) float64 {
	switch v := val.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case []byte:
		return parseFloatString(string(v))
	case string:
		return parseFloatString(v)
	default:
		return float64(ToInt64(v))
	}
}

func parseFloatString(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// ToBool safely converts various types to boolean
// Handles bool, integers, floats, string ("1", "true", "yes", "on")
func ToBool(val interface{}) bool {
	if val == nil {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []byte:
		// Handle raw DB bytes often returned for TINYINT
		return parseBoolString(string(v))
	case string:
		return parseBoolString(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ToInt64(v) != 0
	default:
		return parseBoolString(fmt.Sprintf("%v", v))
	}
}

// parseBoolString parses boolean from string representation
func parseBoolString(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "1" || lower == "true" || lower == "yes" || lower == "on" || lower == "t" {
		return true
	}
	if b, err := strconv.ParseBool(lower); err == nil {
		return b
	}
	return false
}
