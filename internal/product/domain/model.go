package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/specbook/internal/pricing"
	"gorm.io/datatypes"
)

// Product is global catalog reference data, maintained by sync jobs
// through the upsert-by-SKU endpoint. Pricing, Supplier, and VolumeBreaks
// keep the raw upstream JSON: monetary values in those bags may be numbers
// or numeric strings and are normalized only at pricing time.
type Product struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	SKU              string         `json:"sku" gorm:"type:text;not null;uniqueIndex"`
	Name             string         `json:"name" gorm:"type:text;not null"`
	Description      *string        `json:"description,omitempty" gorm:"type:text"`
	Currency         string         `json:"currency" gorm:"type:text;not null;default:NGN"`
	UnitCost         float64        `json:"unit_cost" gorm:"not null;default:0"`
	MSRP             float64        `json:"msrp" gorm:"column:msrp;not null;default:0"`
	TierBaseDiscount float64        `json:"tier_base_discount" gorm:"not null;default:0"`
	TierPlusDiscount float64        `json:"tier_plus_discount" gorm:"not null;default:0"`
	VolumeBreaks     datatypes.JSON `json:"volume_breaks,omitempty" gorm:"type:jsonb"`
	Pricing          datatypes.JSON `json:"pricing,omitempty" gorm:"type:jsonb"`
	Supplier         datatypes.JSON `json:"supplier,omitempty" gorm:"type:jsonb"`
	Active           bool           `json:"active" gorm:"not null;default:true"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// PricingInput adapts a catalog row to the pricing engine's input shape.
func (p *Product) PricingInput() pricing.ProductInput {
	in := pricing.ProductInput{
		ID:               snowflake.ID(p.ID).String(),
		SKU:              p.SKU,
		Name:             p.Name,
		Currency:         p.Currency,
		UnitCost:         p.UnitCost,
		MSRP:             p.MSRP,
		TierBaseDiscount: p.TierBaseDiscount,
		TierPlusDiscount: p.TierPlusDiscount,
	}
	if len(p.Pricing) > 0 {
		_ = json.Unmarshal(p.Pricing, &in.Pricing)
	}
	if len(p.Supplier) > 0 {
		_ = json.Unmarshal(p.Supplier, &in.Supplier)
	}
	if len(p.VolumeBreaks) > 0 {
		_ = json.Unmarshal(p.VolumeBreaks, &in.VolumeBreaks)
	}
	return in
}
