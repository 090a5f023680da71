package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	dec := decimal.NewFromFloat(12.5)

	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{name: "nil", input: nil, want: 0},
		{name: "float64", input: 19.99, want: 19.99},
		{name: "int", input: 42, want: 42},
		{name: "int64", input: int64(7), want: 7},
		{name: "numeric string", input: "1500.50", want: 1500.5},
		{name: "padded string", input: "  250 ", want: 250},
		{name: "garbage string", input: "abc", want: 0},
		{name: "empty string", input: "", want: 0},
		{name: "json number", input: json.Number("99.9"), want: 99.9},
		{name: "decimal", input: dec, want: 12.5},
		{name: "decimal pointer", input: &dec, want: 12.5},
		{name: "nil decimal pointer", input: (*decimal.Decimal)(nil), want: 0},
		{name: "bool", input: true, want: 0},
		{name: "map", input: map[string]any{"x": 1}, want: 0},
		{name: "nan", input: math.NaN(), want: 0},
		{name: "inf", input: math.Inf(1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToNumber(tt.input), 1e-9)
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 0.9))
	assert.Equal(t, 0.9, Clamp(2, 0, 0.9))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 0.9))

	assert.Equal(t, 0.9, ClampDiscount(1.5))
	assert.Equal(t, 0.0, ClampDiscount(-0.2))
	assert.Equal(t, 1.0, ClampRate(3))
	assert.Equal(t, 100.0, ClampMarkupPercent(250))
	assert.Equal(t, 0.0, ClampMarkupPercent(-10))
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"nigeria", "NG"},
		{"NGA", "NG"},
		{"ng", "NG"},
		{"Ghana", "GH"},
		{"kenya", "KE"},
		{"South Africa", "ZA"},
		{"rsa", "ZA"},
		{"usa", "US"},
		{"United Kingdom", "GB"},
		{"uk", "GB"},
		{"fr", "FR"},
		{"de", "DE"},
		{"Atlantis", ""},
		{"", ""},
		{"12", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCountry(tt.input), "input %q", tt.input)
	}
}
