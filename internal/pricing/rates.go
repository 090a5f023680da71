package pricing

// ShippingRule is one per-country entry of the fixed shipping table.
// FreeOver of zero disables the free-shipping threshold.
type ShippingRule struct {
	Rate     float64
	Min      float64
	Max      float64
	FreeOver float64
}

var shippingRules = map[string]ShippingRule{
	"NG": {Rate: 0.02, Min: 2500, Max: 75000},
	"GH": {Rate: 0.025, Min: 3000, Max: 80000},
	"KE": {Rate: 0.03, Min: 3500, Max: 85000},
	"ZA": {Rate: 0.02, Min: 4000, Max: 90000},
}

var defaultShippingRule = ShippingRule{Rate: 0.03, Min: 5000, Max: 100000}

// ShippingRuleFor returns the shipping rule for a country code, falling
// back to the DEFAULT rule. The second return reports whether the country
// had a dedicated entry.
func ShippingRuleFor(country string) (ShippingRule, bool) {
	if rule, ok := shippingRules[country]; ok {
		return rule, true
	}
	return defaultShippingRule, false
}

var vatRates = map[string]float64{
	"NG": 0.075,
	"GH": 0.125,
	"KE": 0.16,
	"ZA": 0.15,
}

// VATRateFor returns the VAT rate for a country code, 0 when the country
// has no entry.
func VATRateFor(country string) float64 {
	return vatRates[country]
}
