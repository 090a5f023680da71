package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProjectTotalsSingleCurrency(t *testing.T) {
	lines := []LineInput{
		{ID: "li-1", Qty: 10, Product: baseTierProduct()},
		{ID: "li-2", Qty: 2, Product: ProductInput{Currency: "NGN", UnitCost: 400, MSRP: 1000}},
	}

	totals := ComputeProjectTotals(lines, Params{PricingTier: "base"})

	require.NotNil(t, totals.Currency)
	assert.Equal(t, "NGN", *totals.Currency)
	assert.InDelta(t, 22000, totals.ListSubtotal, 1e-9)
	assert.InDelta(t, 19000, totals.Subtotal, 1e-9)
	assert.InDelta(t, 3000, totals.Discounts, 1e-9)
	assert.Len(t, totals.Lines, 2)
	assert.InDelta(t, totals.Subtotal+totals.Shipping+totals.Tax, totals.Total, 1e-9)
}

// Mixed currencies yield a nil total currency rather than an error. The
// aggregate keeps computing; only the currency label is withheld because
// the amounts cannot be combined under one unit. Deliberate behavior,
// preserved as-is.
func TestComputeProjectTotalsMixedCurrencyNilCurrency(t *testing.T) {
	lines := []LineInput{
		{Qty: 1, Product: ProductInput{Currency: "NGN", MSRP: 1000}},
		{Qty: 1, Product: ProductInput{Currency: "USD", MSRP: 20}},
	}

	totals := ComputeProjectTotals(lines, Params{})

	assert.Nil(t, totals.Currency)
	assert.InDelta(t, 1020, totals.Subtotal, 1e-9)
}

func TestComputeProjectTotalsEstimatorOverridesLineFallback(t *testing.T) {
	product := baseTierProduct()
	product.Supplier = SupplierInfo{ShippingRate: 0.1, VAT: 0.2}

	lines := []LineInput{{Qty: 10, Product: product}}

	// No country and no overrides: per-line supplier sums are the fallback.
	fallback := ComputeProjectTotals(lines, Params{PricingTier: "base"})
	assert.InDelta(t, 1700, fallback.Shipping, 1e-9)
	assert.InDelta(t, 3400, fallback.Tax, 1e-9)
	assert.Equal(t, SourceNone, fallback.ShippingMeta.Source)

	// Country resolved: the single project-level estimate wins.
	estimated := ComputeProjectTotals(lines, Params{
		PricingTier: "base",
		ClientMeta:  &ClientMeta{Country: "NG"},
	})
	assert.InDelta(t, 2500, estimated.Shipping, 1e-9)
	assert.InDelta(t, (17000+2500)*0.075, estimated.Tax, 1e-9)
	assert.Equal(t, SourceTable, estimated.ShippingMeta.Source)
	assert.InDelta(t, estimated.Subtotal+estimated.Shipping+estimated.Tax, estimated.Total, 1e-9)
}

func TestComputeProjectTotalsEmpty(t *testing.T) {
	totals := ComputeProjectTotals(nil, Params{})

	assert.Nil(t, totals.Currency)
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.Total)
	assert.Empty(t, totals.Lines)
}
