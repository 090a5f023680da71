package domain

import (
	"encoding/csv"
	"strings"
	"testing"
)

func sampleSnapshot() SnapshotPayload {
	return SnapshotPayload{
		Project: SnapshotProject{
			ID:     "100",
			Name:   "Lekki Villa",
			Status: "active",
		},
		LineItems: []SnapshotLine{
			{
				LineItemID:         "1",
				Room:               "Kitchen",
				SKU:                "TILE-001",
				Product:            "Porcelain Tile",
				Qty:                10,
				Currency:           "NGN",
				UnitPrice:          "2000",
				EffectiveUnitPrice: "1700",
				DiscountRate:       "0.15",
				LineTotal:          "17000",
				Notes:              `says "rush", 2-week lead`,
				Source:             SourceComputed,
			},
			{
				LineItemID:         "2",
				SKU:                "SINK-009",
				Product:            "Farmhouse Sink",
				Qty:                1,
				Currency:           "NGN",
				UnitPrice:          "90000",
				EffectiveUnitPrice: "90000",
				DiscountRate:       "0",
				LineTotal:          "90000",
				Source:             SourceOverride,
			},
		},
	}
}

func TestBuildCSVShape(t *testing.T) {
	payload := sampleSnapshot()
	currency := "NGN"
	subtotal := 107000.0
	total := 107000.0
	totals := SnapshotTotals{
		Currency: &currency,
		Subtotal: &subtotal,
		Total:    &total,
	}

	out := BuildCSV(payload, &totals)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// header + 2 lines + TOTALS
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if got := strings.Join(records[0], ","); got != strings.Join(csvHeader, ",") {
		t.Fatalf("unexpected header: %s", got)
	}

	first := records[1]
	if first[6] != "TILE-001" || first[8] != "10" || first[12] != "17000" {
		t.Fatalf("unexpected first row: %v", first)
	}
	// Embedded quotes and commas must survive the round-trip.
	if first[13] != `says "rush", 2-week lead` {
		t.Fatalf("notes mangled: %q", first[13])
	}
	if records[2][14] != SourceOverride {
		t.Fatalf("expected override source, got %q", records[2][14])
	}

	last := records[3]
	if last[7] != "TOTALS" {
		t.Fatalf("expected TOTALS marker, got %q", last[7])
	}
	if last[13] != "subtotal=107000; total=107000" {
		t.Fatalf("unexpected totals summary: %q", last[13])
	}
}

func TestBuildCSVWithoutTotals(t *testing.T) {
	out := BuildCSV(sampleSnapshot(), nil)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 lines, got %d records", len(records))
	}
}

func TestBuildCSVDeterministic(t *testing.T) {
	payload := sampleSnapshot()
	a := BuildCSV(payload, nil)
	b := BuildCSV(payload, nil)
	if a != b {
		t.Fatal("expected identical output for identical input")
	}
}
