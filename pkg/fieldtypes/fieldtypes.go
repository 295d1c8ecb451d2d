// Package fieldtypes defines the scalar kinds a model field can hold,
// together with the default value and validation rule of each kind.
package fieldtypes

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
)

// Type identifies the kind of value a field stores.
// The numeric values are flags so they stay stable in stored configuration.
type Type int

const (
	Int       Type = 1
	String    Type = 2
	Bool      Type = 4
	Decimal   Type = 8
	Timestamp Type = 16
)

// EpochTimestamp is the default value of an unset Timestamp field.
const EpochTimestamp = "1970-01-01 00:00:00"

// TimestampLayout is the layout used when a time.Time is rendered for a Timestamp field.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	intPattern       = regexp.MustCompile(`^\d*$`)
	decimalPattern   = regexp.MustCompile(`^\d*(\.\d+)?$`)
	numericPattern   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2} \d{2}:\d{2}:\d{2}$`)
)

// kind bundles the behaviour of one field type
type kind struct {
	name     string
	def      func() interface{}
	validate func(value interface{}) bool
}

var kinds = map[Type]kind{
	Int: {
		name: "int",
		def:  func() interface{} { return int64(0) },
		validate: func(value interface{}) bool {
			if isInteger(value) {
				return true
			}
			s, ok := value.(string)
			return ok && intPattern.MatchString(s)
		},
	},
	String: {
		name: "string",
		def:  func() interface{} { return "" },
		validate: func(value interface{}) bool {
			_, ok := value.(string)
			return ok
		},
	},
	Bool: {
		name: "bool",
		def:  func() interface{} { return false },
		validate: func(value interface{}) bool {
			_, ok := value.(bool)
			return ok
		},
	},
	Decimal: {
		name: "decimal",
		def:  func() interface{} { return float64(0) },
		validate: func(value interface{}) bool {
			switch v := value.(type) {
			case float32, float64:
				return true
			case string:
				return numericPattern.MatchString(v) || decimalPattern.MatchString(v)
			default:
				return isInteger(value)
			}
		},
	},
	Timestamp: {
		name: "timestamp",
		def:  func() interface{} { return EpochTimestamp },
		validate: func(value interface{}) bool {
			switch v := value.(type) {
			case time.Time:
				return true
			case string:
				return timestampPattern.MatchString(v)
			default:
				return false
			}
		},
	},
}

func isInteger(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func lookup(t Type) (kind, error) {
	k, ok := kinds[t]
	if !ok {
		return kind{}, apperrors.NewUnknownFieldTypeError(strconv.Itoa(int(t)))
	}
	return k, nil
}

// String returns the lower-case name of the type
func (t Type) String() string {
	if k, ok := kinds[t]; ok {
		return k.name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the declared kinds
func (t Type) Valid() bool {
	_, ok := kinds[t]
	return ok
}

// ParseType resolves a type from its name ("int", "string", ...) or numeric value
func ParseType(name string) (Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for t, k := range kinds {
		if k.name == normalized {
			return t, nil
		}
	}
	if n, err := strconv.Atoi(normalized); err == nil && Type(n).Valid() {
		return Type(n), nil
	}
	return 0, apperrors.NewUnknownFieldTypeError(name)
}

// MarshalText encodes the type by name
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, apperrors.NewUnknownFieldTypeError(strconv.Itoa(int(t)))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DefaultValue returns the canonical value of an unset field of type t
func DefaultValue(t Type) (interface{}, error) {
	k, err := lookup(t)
	if err != nil {
		return nil, err
	}
	return k.def(), nil
}

// Validate reports whether value is acceptable for type t.
// Bool accepts only true/false; there is no truthy coercion.
func Validate(t Type, value interface{}) (bool, error) {
	k, err := lookup(t)
	if err != nil {
		return false, err
	}
	return k.validate(value), nil
}
