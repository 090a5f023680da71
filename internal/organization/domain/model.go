package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Organization struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"type:text;not null"`
	Slug             string         `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	PricingTier      string         `json:"pricing_tier" gorm:"type:text"`
	TaxStatus        string         `json:"tax_status" gorm:"type:text"`
	ProposalDefaults datatypes.JSON `json:"proposal_defaults,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }

// ProposalDefaults is the org-level fallback for shared proposal views.
// MarkupPercent may arrive as a number or a numeric string.
type ProposalDefaults struct {
	MarkupPercent any    `json:"markupPercent,omitempty"`
	BrandColor    string `json:"brandColor,omitempty"`
	LogoURL       string `json:"logoUrl,omitempty"`
	FooterNote    string `json:"footerNote,omitempty"`
}

func (o *Organization) Defaults() ProposalDefaults {
	var d ProposalDefaults
	if len(o.ProposalDefaults) > 0 {
		_ = json.Unmarshal(o.ProposalDefaults, &d)
	}
	return d
}
