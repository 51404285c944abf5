package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"1500", f(1500)},
		{"1500.75", f(1500.75)},
		{"  42  ", f(42)},
		{"$1,200.50", f(1200.5)}, // currency formatting tolerated
		{"-5", f(-5)},
		{"0", f(0)},
		{"", nil},
		{"   ", nil},
		{"abc", nil},
		{"12abc", nil},
		{"NaN", nil}, // never propagates into aggregates
		{"Inf", nil},
		{"-Inf", nil},
	}
	for _, tt := range tests {
		got := parseFloat(tt.input)
		if tt.want == nil {
			assert.Nil(t, got, "input: %q", tt.input)
			continue
		}
		require.NotNil(t, got, "input: %q", tt.input)
		assert.Equal(t, *tt.want, *got, "input: %q", tt.input)
	}
}

func TestFloatOrZero(t *testing.T) {
	v, failed := floatOrZero("3.5")
	assert.Equal(t, 3.5, v)
	assert.False(t, failed)

	v, failed = floatOrZero("")
	assert.Equal(t, 0.0, v)
	assert.False(t, failed) // empty is absence, not a failure

	v, failed = floatOrZero("garbage")
	assert.Equal(t, 0.0, v)
	assert.True(t, failed)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string // "" means nil
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15 10:30:00", "2024-03-15"},
		{"2024-03-15T10:30:00Z", "2024-03-15"},
		{" 2024-03-15 ", "2024-03-15"},
		{"", ""},
		{"15/03/2024", ""},
		{"not-a-date", ""},
	}
	for _, tt := range tests {
		got := parseDate(tt.input)
		if tt.want == "" {
			assert.Nil(t, got, "input: %q", tt.input)
			continue
		}
		require.NotNil(t, got, "input: %q", tt.input)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "input: %q", tt.input)
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"completado", "Completado"},
		{"EN PROCESO", "En Proceso"},
		{"  pendiente ", "Pendiente"},
		{"materia prima", "Materia Prima"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleCase(tt.input), "input: %q", tt.input)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "5551234567", digitsOnly("(555) 123-4567"))
	assert.Equal(t, "34911222333", digitsOnly("+34 911 222 333"))
	assert.Equal(t, "", digitsOnly("ext."))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, round2(200.0/3.0))
	assert.Equal(t, 50.0, round2(50))
	assert.Equal(t, 0.1, round2(0.1049))
}

func f(v float64) *float64 { return &v }
