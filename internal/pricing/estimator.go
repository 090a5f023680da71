package pricing

import "strings"

// ClientMeta is the client-supplied shipping/tax metadata attached to a
// project. Fields are optional; monetary and rate fields may be numbers
// or numeric strings.
type ClientMeta struct {
	Shipping        *ShippingPrefs `json:"shipping,omitempty"`
	ShippingAddress *AddressMeta   `json:"shippingAddress,omitempty"`
	Address         *AddressMeta   `json:"address,omitempty"`
	Client          *ClientInfo    `json:"client,omitempty"`
	Country         string         `json:"country,omitempty"`
	ShippingFlat    any            `json:"shippingFlat,omitempty"`
	ShippingRate    any            `json:"shippingRate,omitempty"`
	TaxExempt       bool           `json:"taxExempt,omitempty"`
	TaxRate         any            `json:"taxRate,omitempty"`
	Tax             *TaxPrefs      `json:"tax,omitempty"`
}

// ShippingPrefs carries per-project shipping overrides.
type ShippingPrefs struct {
	Country string `json:"country,omitempty"`
	Method  string `json:"method,omitempty"`
	Flat    any    `json:"flat,omitempty"`
	Rate    any    `json:"rate,omitempty"`
}

// AddressMeta is a postal address; only the country participates in pricing.
type AddressMeta struct {
	Line1   string `json:"line1,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// ClientInfo identifies the external client a project is built for.
type ClientInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Country string `json:"country,omitempty"`
}

// TaxPrefs carries per-project tax overrides.
type TaxPrefs struct {
	Exempt bool `json:"exempt,omitempty"`
	Rate   any  `json:"rate,omitempty"`
}

// Decision sources recorded in estimate metadata.
const (
	SourcePickup   = "pickup"
	SourceOverride = "override"
	SourceTable    = "table"
	SourceExempt   = "exempt"
	SourceNone     = "none"
)

// RateMeta records how a shipping or tax amount was decided, for audit.
type RateMeta struct {
	Source  string  `json:"source"`
	Country string  `json:"country,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
}

// EstimateInput is the project-level input to EstimateShippingTax.
type EstimateInput struct {
	Subtotal   float64
	ClientMeta *ClientMeta
	TaxStatus  string
}

// Estimate is the estimator result. Nil Shipping or Tax means the
// estimator could not decide and the caller should fall back to the
// summed per-line values.
type Estimate struct {
	Shipping     *float64
	Tax          *float64
	ShippingMeta RateMeta
	TaxMeta      RateMeta
}

// EstimateShippingTax derives project-level shipping and tax from client
// metadata, the aggregated subtotal, and the org tax status. It applies
// pickup and flat/rate overrides first, then the fixed per-country tables.
func EstimateShippingTax(in EstimateInput) Estimate {
	country := ResolveCountry(in.ClientMeta)

	est := Estimate{
		ShippingMeta: RateMeta{Source: SourceNone, Country: country},
		TaxMeta:      RateMeta{Source: SourceNone, Country: country},
	}

	est.Shipping, est.ShippingMeta = estimateShipping(in, country)
	est.Tax, est.TaxMeta = estimateTax(in, country, est.Shipping)
	return est
}

func estimateShipping(in EstimateInput, country string) (*float64, RateMeta) {
	meta := RateMeta{Source: SourceNone, Country: country}

	if isPickup(in.ClientMeta) {
		meta.Source = SourcePickup
		return ptr(0), meta
	}

	if flat := flatShippingOverride(in.ClientMeta); flat > 0 {
		meta.Source = SourceOverride
		return ptr(flat), meta
	}

	overrideRate := shippingRateOverride(in.ClientMeta)
	if overrideRate <= 0 && country == "" {
		return nil, meta
	}

	rule, _ := ShippingRuleFor(country)
	rate := rule.Rate
	meta.Source = SourceTable
	if overrideRate > 0 {
		rate = ClampRate(overrideRate)
		meta.Source = SourceOverride
	}
	meta.Rate = rate

	amount := in.Subtotal * rate
	if rule.FreeOver > 0 && in.Subtotal >= rule.FreeOver {
		return ptr(0), meta
	}
	amount = Clamp(amount, rule.Min, rule.Max)
	return ptr(amount), meta
}

func estimateTax(in EstimateInput, country string, shipping *float64) (*float64, RateMeta) {
	meta := RateMeta{Source: SourceNone, Country: country}

	if isTaxExempt(in.ClientMeta, in.TaxStatus) {
		meta.Source = SourceExempt
		return ptr(0), meta
	}

	overrideRate := taxRateOverride(in.ClientMeta)
	if overrideRate <= 0 && country == "" {
		return nil, meta
	}

	rate := VATRateFor(country)
	source := SourceTable
	if overrideRate > 0 {
		rate = ClampRate(overrideRate)
		source = SourceOverride
	}
	if rate <= 0 {
		return nil, meta
	}
	meta.Source = source
	meta.Rate = rate

	base := in.Subtotal
	if shipping != nil {
		base += *shipping
	}
	return ptr(base * rate), meta
}

func isPickup(meta *ClientMeta) bool {
	if meta == nil || meta.Shipping == nil {
		return false
	}
	method := strings.ToLower(strings.TrimSpace(meta.Shipping.Method))
	return strings.Contains(method, "pickup") || strings.Contains(method, "collect")
}

func flatShippingOverride(meta *ClientMeta) float64 {
	if meta == nil {
		return 0
	}
	if meta.Shipping != nil {
		if flat := ToNumber(meta.Shipping.Flat); flat > 0 {
			return flat
		}
	}
	return ToNumber(meta.ShippingFlat)
}

func shippingRateOverride(meta *ClientMeta) float64 {
	if meta == nil {
		return 0
	}
	if meta.Shipping != nil {
		if rate := ToNumber(meta.Shipping.Rate); rate > 0 {
			return rate
		}
	}
	return ToNumber(meta.ShippingRate)
}

func taxRateOverride(meta *ClientMeta) float64 {
	if meta == nil {
		return 0
	}
	if meta.Tax != nil {
		if rate := ToNumber(meta.Tax.Rate); rate > 0 {
			return rate
		}
	}
	return ToNumber(meta.TaxRate)
}

func isTaxExempt(meta *ClientMeta, taxStatus string) bool {
	if meta != nil {
		if meta.TaxExempt {
			return true
		}
		if meta.Tax != nil && meta.Tax.Exempt {
			return true
		}
	}
	return strings.Contains(strings.ToLower(taxStatus), "exempt")
}

func ptr(v float64) *float64 {
	return &v
}
