// Package pricing computes line item prices, project totals, and
// shipping/tax estimates. It is pure: no I/O, no persistence, all
// inputs are value types fetched by the caller.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ToNumber coerces heterogeneous monetary inputs into a finite float64.
// Catalog payloads carry amounts as numbers, numeric strings, or decimal
// values depending on the upstream source; anything unparseable degrades
// to 0 instead of poisoning a quote. Never panics.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		return parseNumber(n)
	case json.Number:
		return parseNumber(n.String())
	case decimal.Decimal:
		f, _ := n.Float64()
		return finite(f)
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		f, _ := n.Float64()
		return finite(f)
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return parseNumber(s.String())
		}
		return 0
	}
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return finite(f)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp bounds v to [min, max] inclusive.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

const (
	maxDiscountRate = 0.9
	maxMarkupPct    = 100
)

// ClampDiscount bounds a fractional discount rate to [0, 0.9].
func ClampDiscount(v float64) float64 {
	return Clamp(v, 0, maxDiscountRate)
}

// ClampRate bounds a fractional shipping or VAT rate to [0, 1].
func ClampRate(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampMarkupPercent bounds a proposal markup percentage to [0, 100].
func ClampMarkupPercent(v float64) float64 {
	return Clamp(v, 0, maxMarkupPct)
}
