package fieldtypes

import (
	"testing"
	"time"

	apperrors "github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValue(t *testing.T) {
	cases := map[Type]interface{}{
		Int:       int64(0),
		String:    "",
		Bool:      false,
		Decimal:   float64(0),
		Timestamp: "1970-01-01 00:00:00",
	}

	for typ, want := range cases {
		got, err := DefaultValue(typ)
		require.NoError(t, err, typ.String())
		assert.Equal(t, want, got, typ.String())
	}
}

func TestDefaultValue_UnknownType(t *testing.T) {
	_, err := DefaultValue(Type(3))
	assert.True(t, apperrors.IsUnknownFieldType(err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		typ   Type
		value interface{}
		want  bool
	}{
		{"int native", Int, 42, true},
		{"int64 native", Int, int64(-7), true},
		{"int digit string", Int, "123", true},
		{"int empty string", Int, "", true},
		{"int negative string", Int, "-1", false},
		{"int alpha string", Int, "12a", false},
		{"int float", Int, 1.5, false},
		{"int bool", Int, true, false},

		{"string", String, "hello", true},
		{"string empty", String, "", true},
		{"string from int", String, 5, false},

		{"bool true", Bool, true, true},
		{"bool false", Bool, false, true},
		{"bool one", Bool, 1, false},
		{"bool string", Bool, "true", false},

		{"decimal float", Decimal, 1.25, true},
		{"decimal int", Decimal, 3, true},
		{"decimal string", Decimal, "10.50", true},
		{"decimal leading point", Decimal, ".5", true},
		{"decimal signed", Decimal, "-2.5", true},
		{"decimal exponent", Decimal, "1e3", true},
		{"decimal words", Decimal, "ten", false},
		{"decimal bool", Decimal, false, false},

		{"timestamp full", Timestamp, "2024-01-31 12:30:00", true},
		{"timestamp short month/day", Timestamp, "2024-1-3 08:05:09", true},
		{"timestamp date only", Timestamp, "2024-01-31", false},
		{"timestamp iso T", Timestamp, "2024-01-31T12:30:00", false},
		{"timestamp time.Time", Timestamp, time.Now(), true},
		{"timestamp int", Timestamp, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Validate(tc.typ, tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_UnknownType(t *testing.T) {
	_, err := Validate(Type(0), "x")
	assert.True(t, apperrors.IsUnknownFieldType(err))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("Decimal")
	require.NoError(t, err)
	assert.Equal(t, Decimal, typ)

	typ, err = ParseType("16")
	require.NoError(t, err)
	assert.Equal(t, Timestamp, typ)

	_, err = ParseType("blob")
	assert.True(t, apperrors.IsUnknownFieldType(err))
}

func TestTypeText(t *testing.T) {
	text, err := Bool.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "bool", string(text))

	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("int")))
	assert.Equal(t, Int, typ)
}
