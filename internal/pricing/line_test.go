package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseTierProduct() ProductInput {
	return ProductInput{
		ID:               "prod-1",
		SKU:              "CHAIR-01",
		Name:             "Stacking Chair",
		Currency:         "NGN",
		UnitCost:         1000,
		MSRP:             2000,
		TierBaseDiscount: 0.1,
		VolumeBreaks:     []VolumeBreak{{MinQty: 10, Discount: 0.05}},
	}
}

func TestComputeLinePricingWorkedExample(t *testing.T) {
	line := LineInput{ID: "li-1", Qty: 10, Product: baseTierProduct()}
	got := ComputeLinePricing(line, Params{PricingTier: "base"})

	assert.InDelta(t, 2000, got.BaseUnitPrice, 1e-9)
	assert.InDelta(t, 0.1, got.TierDiscount, 1e-9)
	assert.InDelta(t, 0.05, got.VolumeDiscount, 1e-9)
	assert.InDelta(t, 0.15, got.DiscountRate, 1e-9)
	assert.InDelta(t, 1700, got.EffectiveUnitPrice, 1e-9)
	assert.InDelta(t, 17000, got.Total, 1e-9)
	assert.InDelta(t, 20000, got.ListTotal, 1e-9)
	assert.InDelta(t, 3000, got.DiscountTotal, 1e-9)
	assert.InDelta(t, 10000, got.CostTotal, 1e-9)
	assert.InDelta(t, 7000, got.Margin, 1e-9)
	assert.Equal(t, "NGN", got.Currency)
	assert.False(t, got.Override)
}

func TestComputeLinePricingNoDiscountIdentity(t *testing.T) {
	product := ProductInput{Currency: "NGN", UnitCost: 500, MSRP: 800}
	for _, qty := range []int{0, 1, 3, 25} {
		got := ComputeLinePricing(LineInput{Qty: qty, Product: product}, Params{})
		assert.InDelta(t, got.BaseUnitPrice, got.EffectiveUnitPrice, 1e-9, "qty %d", qty)
		assert.Zero(t, got.DiscountTotal, "qty %d", qty)
	}
}

func TestComputeLinePricingOverrideSuppressesDiscounts(t *testing.T) {
	line := LineInput{Qty: 10, UnitPrice: "1500", Product: baseTierProduct()}
	got := ComputeLinePricing(line, Params{PricingTier: "base"})

	assert.True(t, got.Override)
	assert.InDelta(t, 1500, got.BaseUnitPrice, 1e-9)
	assert.InDelta(t, 1500, got.EffectiveUnitPrice, 1e-9)
	assert.Zero(t, got.DiscountRate)
	assert.InDelta(t, 15000, got.Total, 1e-9)
	assert.Zero(t, got.DiscountTotal)
}

func TestNormalizeTier(t *testing.T) {
	assert.Equal(t, TierPlus, NormalizeTier("Reseller Plus"))
	assert.Equal(t, TierPlus, NormalizeTier("base-plus"))
	assert.Equal(t, TierBase, NormalizeTier("BASE"))
	assert.Equal(t, "", NormalizeTier("gold"))
	assert.Equal(t, "", NormalizeTier(""))
}

func TestBasePricePrecedence(t *testing.T) {
	product := ProductInput{
		UnitCost: 100,
		MSRP:     200,
		Pricing: ProductPricing{
			ResellerBase:     "150",
			ResellerPlus:     140,
			ResellerPriceNGN: 170,
		},
	}

	assert.InDelta(t, 150, resolveBasePrice(product, TierBase), 1e-9)
	assert.InDelta(t, 140, resolveBasePrice(product, TierPlus), 1e-9)
	assert.InDelta(t, 170, resolveBasePrice(product, ""), 1e-9)

	product.Pricing.ResellerBase = nil
	assert.InDelta(t, 170, resolveBasePrice(product, TierBase), 1e-9)

	product.Pricing.ResellerPriceNGN = nil
	assert.InDelta(t, 200, resolveBasePrice(product, TierBase), 1e-9)

	product.MSRP = nil
	assert.InDelta(t, 100, resolveBasePrice(product, TierBase), 1e-9)
}

func TestDiscountRateAlwaysWithinBounds(t *testing.T) {
	product := baseTierProduct()
	product.TierBaseDiscount = 0.8
	product.VolumeBreaks = []VolumeBreak{{MinQty: 5, Discount: 0.7}}

	got := ComputeLinePricing(LineInput{Qty: 5, Product: product}, Params{PricingTier: "base"})
	assert.InDelta(t, 0.9, got.DiscountRate, 1e-9)
	assert.LessOrEqual(t, got.TierDiscount, 0.9)
	assert.LessOrEqual(t, got.VolumeDiscount, 0.9)
	assert.GreaterOrEqual(t, got.TierDiscount, 0.0)
	assert.GreaterOrEqual(t, got.VolumeDiscount, 0.0)
}

func TestVolumeBreakSelectionMonotonic(t *testing.T) {
	breaks := []VolumeBreak{
		{MinQty: 5, Discount: 0.02},
		{MinQty: 50, Discount: 0.1},
		{MinQty: 20, Discount: 0.05},
		{MinQty: 0, Discount: 0.5},
		{MinQty: 10, Discount: -1},
	}

	prev := 0.0
	for qty := 0; qty <= 60; qty++ {
		got := resolveVolumeDiscount(breaks, float64(qty))
		assert.GreaterOrEqual(t, got, prev, "qty %d", qty)
		prev = got
	}
	assert.InDelta(t, 0.1, resolveVolumeDiscount(breaks, 50), 1e-9)
	assert.InDelta(t, 0.05, resolveVolumeDiscount(breaks, 49), 1e-9)
	assert.Zero(t, resolveVolumeDiscount(breaks, 4))
}

func TestTotalPlusDiscountEqualsListTotal(t *testing.T) {
	products := []ProductInput{
		baseTierProduct(),
		{Currency: "NGN", UnitCost: 333.33, MSRP: "999.99", TierBaseDiscount: "0.125"},
		{Currency: "NGN", UnitCost: 1, MSRP: 7, VolumeBreaks: []VolumeBreak{{MinQty: 3, Discount: 0.33}}},
	}
	for i, product := range products {
		for _, qty := range []int{1, 3, 10, 77} {
			got := ComputeLinePricing(LineInput{Qty: qty, Product: product}, Params{PricingTier: "base"})
			assert.InDelta(t, got.ListTotal, got.Total+got.DiscountTotal, 1e-9, "product %d qty %d", i, qty)
		}
	}
}

func TestLineSupplierShippingAndTax(t *testing.T) {
	product := baseTierProduct()
	product.Supplier = SupplierInfo{ShippingRate: 0.04, VAT: "0.075"}

	got := ComputeLinePricing(LineInput{Qty: 10, Product: product}, Params{PricingTier: "base"})
	assert.InDelta(t, 17000*0.04, got.Shipping, 1e-9)
	assert.InDelta(t, 17000*0.075, got.Tax, 1e-9)

	exempt := ComputeLinePricing(LineInput{Qty: 10, Product: product}, Params{PricingTier: "base", TaxStatus: "exempt"})
	assert.Zero(t, exempt.Tax)
	assert.InDelta(t, 17000*0.04, exempt.Shipping, 1e-9)
}

func TestCostUnitPrefersBaseUnitCostNGN(t *testing.T) {
	product := baseTierProduct()
	product.Pricing.BaseUnitCostNGN = "1200"

	got := ComputeLinePricing(LineInput{Qty: 2, Product: product}, Params{})
	assert.InDelta(t, 1200, got.CostUnit, 1e-9)
	assert.InDelta(t, 2400, got.CostTotal, 1e-9)
}
