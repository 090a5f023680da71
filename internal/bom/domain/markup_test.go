package domain

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func markupFixture() (SnapshotPayload, SnapshotTotals) {
	currency := "NGN"
	subtotal := 17000.0
	shipping := 500.0
	tax := 1275.0
	total := 18775.0
	payload := SnapshotPayload{
		LineItems: []SnapshotLine{
			{
				LineItemID:         "1",
				SKU:                "TILE-001",
				Qty:                10,
				EffectiveUnitPrice: "1700",
				LineTotal:          "17000",
			},
		},
	}
	totals := SnapshotTotals{
		Currency: &currency,
		Subtotal: &subtotal,
		Shipping: &shipping,
		Tax:      &tax,
		Total:    &total,
	}
	return payload, totals
}

func TestApplyMarkupScalesGoodsOnly(t *testing.T) {
	payload, totals := markupFixture()

	quote := ApplyMarkup(payload, totals, 10, MarkupSourceProject)

	if !approx(quote.Subtotal, 18700) {
		t.Fatalf("expected subtotal 18700, got %v", quote.Subtotal)
	}
	if !approx(quote.Lines[0].EffectiveUnitPrice, 1870) {
		t.Fatalf("expected unit price 1870, got %v", quote.Lines[0].EffectiveUnitPrice)
	}
	if !approx(quote.Lines[0].LineTotal, 18700) {
		t.Fatalf("expected line total 18700, got %v", quote.Lines[0].LineTotal)
	}
	// Shipping and tax pass through untouched.
	if quote.Shipping != 500 || quote.Tax != 1275 {
		t.Fatalf("shipping/tax changed: %v / %v", quote.Shipping, quote.Tax)
	}
	if !approx(quote.Total, 18700+500+1275) {
		t.Fatalf("unexpected total: %v", quote.Total)
	}
}

func TestApplyMarkupZeroIsIdentity(t *testing.T) {
	payload, totals := markupFixture()

	quote := ApplyMarkup(payload, totals, 0, MarkupSourceNone)

	if quote.Subtotal != 17000 {
		t.Fatalf("expected unchanged subtotal, got %v", quote.Subtotal)
	}
	if quote.Lines[0].EffectiveUnitPrice != 1700 {
		t.Fatalf("expected unchanged unit price, got %v", quote.Lines[0].EffectiveUnitPrice)
	}
	if quote.Total != 18775 {
		t.Fatalf("expected unchanged total, got %v", quote.Total)
	}
}

func TestApplyMarkupClamps(t *testing.T) {
	payload, totals := markupFixture()

	quote := ApplyMarkup(payload, totals, 250, MarkupSourceOrg)

	if quote.MarkupPercent != 100 {
		t.Fatalf("expected clamp to 100, got %v", quote.MarkupPercent)
	}
	if !approx(quote.Subtotal, 34000) {
		t.Fatalf("expected doubled subtotal, got %v", quote.Subtotal)
	}
}

func TestResolveMarkup(t *testing.T) {
	tests := []struct {
		name       string
		project    any
		org        any
		wantValue  float64
		wantSource string
	}{
		{"project wins", "12.5", 5.0, 12.5, MarkupSourceProject},
		{"org fallback", nil, 5.0, 5, MarkupSourceOrg},
		// A present-but-zero project markup counts as unset and the org
		// default applies.
		{"zero project falls through", 0.0, 5.0, 5, MarkupSourceOrg},
		{"garbage project falls through", "n/a", "7", 7, MarkupSourceOrg},
		{"nothing set", nil, nil, 0, MarkupSourceNone},
		{"negative org ignored", nil, -3.0, 0, MarkupSourceNone},
		{"project clamped", 400.0, nil, 100, MarkupSourceProject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := ResolveMarkup(tt.project, tt.org)
			if got != tt.wantValue || source != tt.wantSource {
				t.Fatalf("got (%v, %s), want (%v, %s)", got, source, tt.wantValue, tt.wantSource)
			}
		})
	}
}
