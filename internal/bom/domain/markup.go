package domain

import (
	"github.com/smallbiznis/specbook/internal/pricing"
)

// Markup sources.
const (
	MarkupSourceProject = "project"
	MarkupSourceOrg     = "org"
	MarkupSourceNone    = "none"
)

// ResolveMarkup picks the markup percentage for a shared proposal view:
// the project-level value when present and positive, else the org-level
// default, else 0. The returned percentage is clamped to [0, 100].
func ResolveMarkup(projectMarkup, orgMarkup any) (float64, string) {
	if projectMarkup != nil {
		if v := pricing.ToNumber(projectMarkup); v > 0 {
			return pricing.ClampMarkupPercent(v), MarkupSourceProject
		}
	}
	if orgMarkup != nil {
		if v := pricing.ToNumber(orgMarkup); v > 0 {
			return pricing.ClampMarkupPercent(v), MarkupSourceOrg
		}
	}
	return 0, MarkupSourceNone
}

// ProposalLine is one marked-up snapshot line for external display.
type ProposalLine struct {
	LineItemID         string  `json:"line_item_id"`
	Room               string  `json:"room,omitempty"`
	SKU                string  `json:"sku"`
	Product            string  `json:"product"`
	Qty                int     `json:"qty"`
	Currency           string  `json:"currency,omitempty"`
	EffectiveUnitPrice float64 `json:"effective_unit_price"`
	LineTotal          float64 `json:"line_total"`
	Notes              string  `json:"notes,omitempty"`
}

// ProposalQuote is the read-only marked-up view of a frozen snapshot.
// The markup factor applies to the goods subtotal and line prices only;
// shipping and tax pass through untouched. The stored snapshot is never
// modified.
type ProposalQuote struct {
	MarkupPercent float64        `json:"markup_percent"`
	MarkupSource  string         `json:"markup_source"`
	Currency      *string        `json:"currency"`
	Lines         []ProposalLine `json:"lines"`
	Subtotal      float64        `json:"subtotal"`
	Shipping      float64        `json:"shipping"`
	Tax           float64        `json:"tax"`
	Total         float64        `json:"total"`
}

// ApplyMarkup builds the proposal quote from a frozen snapshot.
func ApplyMarkup(payload SnapshotPayload, totals SnapshotTotals, markupPercent float64, source string) ProposalQuote {
	factor := 1 + pricing.ClampMarkupPercent(markupPercent)/100

	quote := ProposalQuote{
		MarkupPercent: pricing.ClampMarkupPercent(markupPercent),
		MarkupSource:  source,
		Currency:      totals.Currency,
		Lines:         make([]ProposalLine, 0, len(payload.LineItems)),
	}

	for _, line := range payload.LineItems {
		unit := pricing.ToNumber(line.EffectiveUnitPrice) * factor
		total := pricing.ToNumber(line.LineTotal) * factor
		quote.Lines = append(quote.Lines, ProposalLine{
			LineItemID:         line.LineItemID,
			Room:               line.Room,
			SKU:                line.SKU,
			Product:            line.Product,
			Qty:                line.Qty,
			Currency:           line.Currency,
			EffectiveUnitPrice: unit,
			LineTotal:          total,
			Notes:              line.Notes,
		})
	}

	if totals.Subtotal != nil {
		quote.Subtotal = *totals.Subtotal * factor
	}
	if totals.Shipping != nil {
		quote.Shipping = *totals.Shipping
	}
	if totals.Tax != nil {
		quote.Tax = *totals.Tax
	}
	quote.Total = quote.Subtotal + quote.Shipping + quote.Tax
	return quote
}
