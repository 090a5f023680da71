package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/smallbiznis/specbook/internal/pricing"
	"gorm.io/datatypes"
)

// BOMVersion is an immutable frozen copy of a project's priced line items
// and totals. After insert the row changes only twice, each at most once:
// share-id assignment and the proposal response.
type BOMVersion struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	OrgID            int64          `json:"organization_id" gorm:"column:org_id;not null;index"`
	ProjectID        int64          `json:"project_id" gorm:"not null;index"`
	Version          int            `json:"version" gorm:"not null"`
	ShareID          *string        `json:"share_id,omitempty" gorm:"type:text;uniqueIndex"`
	Snapshot         datatypes.JSON `json:"snapshot" gorm:"type:jsonb;not null"`
	Totals           datatypes.JSON `json:"totals" gorm:"type:jsonb;not null"`
	ProposalStatus   *string        `json:"proposal_status,omitempty" gorm:"type:text"`
	ProposalResponse datatypes.JSON `json:"proposal_response,omitempty" gorm:"type:jsonb"`
	CreatedBy        int64          `json:"created_by"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BOMVersion) TableName() string { return "bom_versions" }

func (v *BOMVersion) DecodeSnapshot() (SnapshotPayload, error) {
	var payload SnapshotPayload
	err := json.Unmarshal(v.Snapshot, &payload)
	return payload, err
}

func (v *BOMVersion) DecodeTotals() (SnapshotTotals, error) {
	var totals SnapshotTotals
	err := json.Unmarshal(v.Totals, &totals)
	return totals, err
}

func (v *BOMVersion) DecodeResponse() *ProposalResponse {
	if len(v.ProposalResponse) == 0 {
		return nil
	}
	var resp ProposalResponse
	if err := json.Unmarshal(v.ProposalResponse, &resp); err != nil {
		return nil
	}
	return &resp
}

// Line sources recorded in the snapshot.
const (
	SourceOverride = "override"
	SourceComputed = "computed"
)

type SnapshotProject struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Status     string              `json:"status"`
	ClientMeta *pricing.ClientMeta `json:"clientMeta,omitempty"`
}

// SnapshotLine freezes one priced line item. Precision-sensitive amounts
// are stringified so the stored payload survives JSON round-trips intact.
type SnapshotLine struct {
	LineItemID         string `json:"lineItemId"`
	Room               string `json:"room,omitempty"`
	ProductID          string `json:"productId"`
	SKU                string `json:"sku"`
	Product            string `json:"product"`
	Qty                int    `json:"qty"`
	Currency           string `json:"currency,omitempty"`
	UnitPrice          string `json:"unitPrice"`
	EffectiveUnitPrice string `json:"effectiveUnitPrice"`
	DiscountRate       string `json:"discountRate"`
	LineTotal          string `json:"lineTotal"`
	Notes              string `json:"notes,omitempty"`
	Source             string `json:"source"`
}

type SnapshotPayload struct {
	Project   SnapshotProject `json:"project"`
	LineItems []SnapshotLine  `json:"lineItems"`
}

type SnapshotTotals struct {
	Currency     *string           `json:"currency"`
	ListSubtotal *float64          `json:"listSubtotal,omitempty"`
	Subtotal     *float64          `json:"subtotal,omitempty"`
	Discounts    *float64          `json:"discounts,omitempty"`
	Shipping     *float64          `json:"shipping,omitempty"`
	Tax          *float64          `json:"tax,omitempty"`
	Total        *float64          `json:"total,omitempty"`
	Margin       *float64          `json:"margin,omitempty"`
	ShippingMeta *pricing.RateMeta `json:"shippingMeta,omitempty"`
	TaxMeta      *pricing.RateMeta `json:"taxMeta,omitempty"`
}

// BuildSnapshot freezes a priced project into the stored payload shape.
func BuildSnapshot(project SnapshotProject, totals *pricing.ProjectTotals) (SnapshotPayload, SnapshotTotals) {
	payload := SnapshotPayload{
		Project:   project,
		LineItems: make([]SnapshotLine, 0, len(totals.Lines)),
	}
	for _, line := range totals.Lines {
		source := SourceComputed
		if line.Override {
			source = SourceOverride
		}
		payload.LineItems = append(payload.LineItems, SnapshotLine{
			LineItemID:         line.LineID,
			Room:               line.RoomName,
			ProductID:          line.ProductID,
			SKU:                line.SKU,
			Product:            line.ProductName,
			Qty:                line.Qty,
			Currency:           line.Currency,
			UnitPrice:          FormatAmount(line.BaseUnitPrice),
			EffectiveUnitPrice: FormatAmount(line.EffectiveUnitPrice),
			DiscountRate:       FormatAmount(line.DiscountRate),
			LineTotal:          FormatAmount(line.Total),
			Notes:              line.Notes,
			Source:             source,
		})
	}

	frozen := SnapshotTotals{
		Currency:     totals.Currency,
		ListSubtotal: amount(totals.ListSubtotal),
		Subtotal:     amount(totals.Subtotal),
		Discounts:    amount(totals.Discounts),
		Shipping:     amount(totals.Shipping),
		Tax:          amount(totals.Tax),
		Total:        amount(totals.Total),
		Margin:       amount(totals.Margin),
	}
	if totals.ShippingMeta.Source != "" {
		meta := totals.ShippingMeta
		frozen.ShippingMeta = &meta
	}
	if totals.TaxMeta.Source != "" {
		meta := totals.TaxMeta
		frozen.TaxMeta = &meta
	}
	return payload, frozen
}

// FormatAmount renders a monetary value with the shortest exact decimal form.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func amount(v float64) *float64 {
	return &v
}

// Proposal response states.
const (
	ProposalAccepted = "ACCEPTED"
	ProposalDeclined = "DECLINED"
)

type ProposalResponse struct {
	Status      string    `json:"status"`
	Name        string    `json:"name,omitempty"`
	Note        string    `json:"note,omitempty"`
	RespondedAt time.Time `json:"responded_at"`
}
