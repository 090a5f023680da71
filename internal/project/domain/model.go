package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/specbook/internal/pricing"
	productdomain "github.com/smallbiznis/specbook/internal/product/domain"
	"gorm.io/datatypes"
)

// Project lifecycle states. Archived blocks further mutation; deleted
// hides the project from listings.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

type Project struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	OrgID        int64          `json:"organization_id" gorm:"column:org_id;not null;index"`
	Name         string         `json:"name" gorm:"type:text;not null"`
	Slug         string         `json:"slug" gorm:"type:text;not null"`
	Status       string         `json:"status" gorm:"type:text;not null;default:active"`
	ClientMeta   datatypes.JSON `json:"client_meta,omitempty" gorm:"type:jsonb"`
	ProposalMeta datatypes.JSON `json:"proposal_meta,omitempty" gorm:"type:jsonb"`
	ArchivedAt   *time.Time     `json:"archived_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Project) TableName() string { return "projects" }

// ProposalMeta is the project-level override for shared proposal views.
type ProposalMeta struct {
	MarkupPercent any    `json:"markupPercent,omitempty"`
	Title         string `json:"title,omitempty"`
	Note          string `json:"note,omitempty"`
}

func (p *Project) Client() *pricing.ClientMeta {
	if len(p.ClientMeta) == 0 {
		return nil
	}
	var meta pricing.ClientMeta
	if err := json.Unmarshal(p.ClientMeta, &meta); err != nil {
		return nil
	}
	return &meta
}

func (p *Project) Proposal() ProposalMeta {
	var meta ProposalMeta
	if len(p.ProposalMeta) > 0 {
		_ = json.Unmarshal(p.ProposalMeta, &meta)
	}
	return meta
}

func (p *Project) Mutable() bool {
	return p.Status == StatusActive
}

type Room struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null;index"`
	ProjectID int64     `json:"project_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Room) TableName() string { return "rooms" }

type LineItem struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null;index"`
	ProjectID int64     `json:"project_id" gorm:"not null;index"`
	RoomID    *int64    `json:"room_id,omitempty"`
	ProductID int64     `json:"product_id" gorm:"not null"`
	Qty       int       `json:"qty" gorm:"not null"`
	UnitPrice *float64  `json:"unit_price,omitempty"`
	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "line_items" }

// BuildLineInputs joins line items with their rooms and products into the
// pricing engine's input shape. Items referencing a missing product are
// skipped; callers validate product presence on write.
func BuildLineInputs(items []LineItem, roomNames map[int64]string, products map[int64]productdomain.Product) []pricing.LineInput {
	inputs := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}

		input := pricing.LineInput{
			ID:      snowflake.ID(item.ID).String(),
			Qty:     item.Qty,
			Notes:   item.Notes,
			Product: product.PricingInput(),
		}
		if item.RoomID != nil {
			input.RoomName = roomNames[*item.RoomID]
		}
		if item.UnitPrice != nil {
			input.UnitPrice = *item.UnitPrice
		}
		inputs = append(inputs, input)
	}
	return inputs
}
