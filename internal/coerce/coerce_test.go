package coerce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		fallback float64
		want     float64
	}{
		{"float64", 2.5, 0, 2.5},
		{"int", 3, 0, 3},
		{"float32", float32(1.5), 0, 1.5},
		{"uint16", uint16(9), 0, 9},
		{"numeric string", "4.25", 0, 4.25},
		{"padded string", " 7 ", 0, 7},
		{"NaN", math.NaN(), 1.1, 1.1},
		{"+Inf", math.Inf(1), 1.1, 1.1},
		{"garbage string", "high", 1.1, 1.1},
		{"nil", nil, 1.1, 1.1},
		{"bool", true, 1.1, 1.1},
		{"map", map[string]any{}, 1.1, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in, tt.fallback))
		})
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		fallback bool
		want     bool
	}{
		{"native true", true, false, true},
		{"native false", false, true, false},
		{"string true", "true", false, true},
		{"string YES", "YES", false, true},
		{"string 1", "1", false, true},
		{"string false", "false", true, false},
		{"string No", "No", true, false},
		{"string 0", "0", true, false},
		{"numeric 1", 1.0, false, true},
		{"numeric 0", 0, true, false},
		{"numeric 2", 2.0, true, true},
		{"garbage", "maybe", true, true},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bool(tt.in, tt.fallback))
		})
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#ff8800", Color("#ff8800", "#000000"))
	assert.Equal(t, "#000000", Color("", "#000000"))
	assert.Equal(t, "#000000", Color("   ", "#000000"))
	assert.Equal(t, "#000000", Color(42, "#000000"))
	assert.Equal(t, "#000000", Color(nil, "#000000"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "steel", String("steel", "default"))
	assert.Equal(t, "default", String("", "default"))
	assert.Equal(t, "default", String(nil, "default"))
	assert.Equal(t, "2.5", String(2.5, "default"))
	assert.Equal(t, "true", String(true, "default"))
	assert.Equal(t, "default", String([]string{"x"}, "default"))
}

// Coercions must never panic on arbitrary input.
func TestTotality(t *testing.T) {
	inputs := []any{nil, "", "x", 0, -1, math.NaN(), math.Inf(-1), []any{1}, map[string]any{"a": 1}, struct{}{}}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			Number(in, 0)
			Bool(in, false)
			Color(in, "#fff")
			String(in, "")
		})
	}
}
