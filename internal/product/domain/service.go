package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/specbook/internal/pricing"
	"github.com/smallbiznis/specbook/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetBySKU(ctx context.Context, sku string) (*Response, error)
	UpsertBySKU(ctx context.Context, req UpsertRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Q      string `form:"q"`
	Active *bool  `form:"active"`
	pagination.Pagination
}

type ListResponse struct {
	Items    []Response           `json:"items"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

// UpsertRequest mirrors the catalog sync payload. Amount fields accept
// numbers or numeric strings.
type UpsertRequest struct {
	SKU              string                  `json:"sku"`
	Name             string                  `json:"name"`
	Description      *string                 `json:"description"`
	Currency         string                  `json:"currency"`
	UnitCost         any                     `json:"unitCost"`
	MSRP             any                     `json:"msrp"`
	TierBaseDiscount any                     `json:"tierBaseDiscount"`
	TierPlusDiscount any                     `json:"tierPlusDiscount"`
	VolumeBreaks     []pricing.VolumeBreak   `json:"volumeBreaks"`
	Pricing          *pricing.ProductPricing `json:"pricing"`
	Supplier         *pricing.SupplierInfo   `json:"supplier"`
	Active           *bool                   `json:"active"`
}

type Response struct {
	ID               string                  `json:"id"`
	SKU              string                  `json:"sku"`
	Name             string                  `json:"name"`
	Description      *string                 `json:"description,omitempty"`
	Currency         string                  `json:"currency"`
	UnitCost         float64                 `json:"unit_cost"`
	MSRP             float64                 `json:"msrp"`
	TierBaseDiscount float64                 `json:"tier_base_discount"`
	TierPlusDiscount float64                 `json:"tier_plus_discount"`
	VolumeBreaks     []pricing.VolumeBreak   `json:"volume_breaks,omitempty"`
	Pricing          *pricing.ProductPricing `json:"pricing,omitempty"`
	Supplier         *pricing.SupplierInfo   `json:"supplier,omitempty"`
	Active           bool                    `json:"active"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

var (
	ErrInvalidSKU  = errors.New("invalid_sku")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)
