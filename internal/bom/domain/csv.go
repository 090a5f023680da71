package domain

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"project_id", "project_name", "project_status", "currency",
	"line_item_id", "room", "sku", "product", "qty",
	"unit_price", "effective_unit_price", "discount_rate", "line_total",
	"notes", "source",
}

// BuildCSV serializes a frozen snapshot to CSV: one row per line item and,
// when totals are supplied, a trailing TOTALS summary row. Deterministic
// for a given snapshot.
func BuildCSV(payload SnapshotPayload, totals *SnapshotTotals) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write(csvHeader)

	project := payload.Project
	for _, line := range payload.LineItems {
		_ = w.Write([]string{
			project.ID,
			project.Name,
			project.Status,
			line.Currency,
			line.LineItemID,
			line.Room,
			line.SKU,
			line.Product,
			strconv.Itoa(line.Qty),
			line.UnitPrice,
			line.EffectiveUnitPrice,
			line.DiscountRate,
			line.LineTotal,
			line.Notes,
			line.Source,
		})
	}

	if totals != nil {
		currency := ""
		if totals.Currency != nil {
			currency = *totals.Currency
		}
		_ = w.Write([]string{
			project.ID,
			project.Name,
			project.Status,
			currency,
			"", "", "",
			"TOTALS",
			"", "", "", "", "",
			totalsSummary(totals),
			"",
		})
	}

	w.Flush()
	return buf.String()
}

// totalsSummary renders the TOTALS notes column, omitting absent fields.
func totalsSummary(totals *SnapshotTotals) string {
	parts := make([]string, 0, 6)
	appendPart := func(label string, v *float64) {
		if v == nil {
			return
		}
		parts = append(parts, label+"="+FormatAmount(*v))
	}
	appendPart("subtotal", totals.Subtotal)
	appendPart("discounts", totals.Discounts)
	appendPart("tax", totals.Tax)
	appendPart("shipping", totals.Shipping)
	appendPart("total", totals.Total)
	appendPart("margin", totals.Margin)
	return strings.Join(parts, "; ")
}
