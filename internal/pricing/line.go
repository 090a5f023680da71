package pricing

import (
	"sort"
	"strings"
)

// Pricing tiers resolved from an org's pricingTier string.
const (
	TierBase = "base"
	TierPlus = "plus"
)

// ProductPricing is the catalog pricing bag. Values may be numbers or
// numeric strings depending on the sync source.
type ProductPricing struct {
	ResellerBase     any `json:"resellerBase,omitempty"`
	ResellerPlus     any `json:"resellerPlus,omitempty"`
	ResellerPriceNGN any `json:"resellerPriceNGN,omitempty"`
	BaseUnitCostNGN  any `json:"baseUnitCostNGN,omitempty"`
}

// SupplierInfo carries the supplier's own shipping and VAT rates used for
// the per-line fallback amounts.
type SupplierInfo struct {
	Name         string `json:"name,omitempty"`
	ShippingRate any    `json:"shippingRate,omitempty"`
	VAT          any    `json:"vat,omitempty"`
}

// VolumeBreak is one quantity threshold unlocking a discount rate.
type VolumeBreak struct {
	MinQty   any `json:"minQty"`
	Discount any `json:"discount"`
}

// ProductInput is the catalog data a line item prices against.
type ProductInput struct {
	ID               string
	SKU              string
	Name             string
	Currency         string
	UnitCost         any
	MSRP             any
	TierBaseDiscount any
	TierPlusDiscount any
	VolumeBreaks     []VolumeBreak
	Pricing          ProductPricing
	Supplier         SupplierInfo
}

// LineInput is one project line item plus its product.
type LineInput struct {
	ID        string
	RoomName  string
	Qty       int
	UnitPrice any
	Notes     string
	Product   ProductInput
}

// Params carries the org-level pricing parameters.
type Params struct {
	PricingTier string
	TaxStatus   string
	ClientMeta  *ClientMeta
}

// LinePricing is the full priced result for one line item.
type LinePricing struct {
	LineID             string
	RoomName           string
	ProductID          string
	SKU                string
	ProductName        string
	Notes              string
	Qty                int
	Currency           string
	Override           bool
	BaseUnitPrice      float64
	TierDiscount       float64
	VolumeDiscount     float64
	DiscountRate       float64
	EffectiveUnitPrice float64
	ListTotal          float64
	Total              float64
	DiscountTotal      float64
	CostUnit           float64
	CostTotal          float64
	Margin             float64
	Shipping           float64
	Tax                float64
}

// NormalizeTier resolves an org's pricing-tier string: contains "plus"
// wins over contains "base"; anything else means no tier.
func NormalizeTier(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "plus"):
		return TierPlus
	case strings.Contains(s, "base"):
		return TierBase
	default:
		return ""
	}
}

// ComputeLinePricing prices one line item against its product and the
// org's tier and tax status. A non-nil UnitPrice override suppresses all
// discounts and uses the override as both base and effective price.
func ComputeLinePricing(line LineInput, params Params) LinePricing {
	product := line.Product
	qty := float64(line.Qty)
	override := line.UnitPrice != nil
	tier := NormalizeTier(params.PricingTier)

	var baseUnitPrice float64
	if override {
		baseUnitPrice = ToNumber(line.UnitPrice)
	} else {
		baseUnitPrice = resolveBasePrice(product, tier)
	}

	var tierDiscount, volumeDiscount float64
	if !override {
		tierDiscount = resolveTierDiscount(product, tier)
		volumeDiscount = resolveVolumeDiscount(product.VolumeBreaks, qty)
	}
	discountRate := ClampDiscount(tierDiscount + volumeDiscount)

	effectiveUnitPrice := baseUnitPrice
	if !override {
		effectiveUnitPrice = baseUnitPrice * (1 - discountRate)
	}

	listTotal := baseUnitPrice * qty
	total := effectiveUnitPrice * qty
	discountTotal := listTotal - total

	costUnit := ToNumber(product.Pricing.BaseUnitCostNGN)
	if costUnit <= 0 {
		costUnit = ToNumber(product.UnitCost)
	}
	costTotal := costUnit * qty

	vat := ClampRate(ToNumber(product.Supplier.VAT))
	if strings.Contains(strings.ToLower(params.TaxStatus), "exempt") {
		vat = 0
	}

	return LinePricing{
		LineID:             line.ID,
		RoomName:           line.RoomName,
		ProductID:          product.ID,
		SKU:                product.SKU,
		ProductName:        product.Name,
		Notes:              line.Notes,
		Qty:                line.Qty,
		Currency:           product.Currency,
		Override:           override,
		BaseUnitPrice:      baseUnitPrice,
		TierDiscount:       tierDiscount,
		VolumeDiscount:     volumeDiscount,
		DiscountRate:       discountRate,
		EffectiveUnitPrice: effectiveUnitPrice,
		ListTotal:          listTotal,
		Total:              total,
		DiscountTotal:      discountTotal,
		CostUnit:           costUnit,
		CostTotal:          costTotal,
		Margin:             total - costTotal,
		Shipping:           total * ClampRate(ToNumber(product.Supplier.ShippingRate)),
		Tax:                total * vat,
	}
}

// resolveBasePrice walks the base-price precedence chain: tier-matched
// reseller price, then resellerPriceNGN, then msrp, then unitCost.
func resolveBasePrice(product ProductInput, tier string) float64 {
	switch tier {
	case TierPlus:
		if v := ToNumber(product.Pricing.ResellerPlus); v > 0 {
			return v
		}
	case TierBase:
		if v := ToNumber(product.Pricing.ResellerBase); v > 0 {
			return v
		}
	}
	if v := ToNumber(product.Pricing.ResellerPriceNGN); v > 0 {
		return v
	}
	if v := ToNumber(product.MSRP); v > 0 {
		return v
	}
	return ToNumber(product.UnitCost)
}

func resolveTierDiscount(product ProductInput, tier string) float64 {
	switch tier {
	case TierPlus:
		return ClampDiscount(ToNumber(product.TierPlusDiscount))
	case TierBase:
		return ClampDiscount(ToNumber(product.TierBaseDiscount))
	default:
		return 0
	}
}

type volumeBreak struct {
	minQty   float64
	discount float64
}

// resolveVolumeDiscount picks the highest qualifying break. Entries with
// non-positive minQty or discount are discarded before selection.
func resolveVolumeDiscount(breaks []VolumeBreak, qty float64) float64 {
	normalized := make([]volumeBreak, 0, len(breaks))
	for _, b := range breaks {
		minQty := ToNumber(b.MinQty)
		discount := ToNumber(b.Discount)
		if minQty <= 0 || discount <= 0 {
			continue
		}
		normalized = append(normalized, volumeBreak{minQty: minQty, discount: ClampDiscount(discount)})
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].minQty > normalized[j].minQty
	})
	for _, b := range normalized {
		if b.minQty <= qty {
			return b.discount
		}
	}
	return 0
}
