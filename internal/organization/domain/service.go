package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Get(ctx context.Context) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Response, error)
}

type CreateRequest struct {
	Name        string `json:"name"`
	PricingTier string `json:"pricing_tier"`
	TaxStatus   string `json:"tax_status"`
}

type UpdateSettingsRequest struct {
	Name             *string           `json:"name"`
	PricingTier      *string           `json:"pricing_tier"`
	TaxStatus        *string           `json:"tax_status"`
	ProposalDefaults *ProposalDefaults `json:"proposal_defaults"`
}

type Response struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	PricingTier      string            `json:"pricing_tier,omitempty"`
	TaxStatus        string            `json:"tax_status,omitempty"`
	ProposalDefaults *ProposalDefaults `json:"proposal_defaults,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrNotFound            = errors.New("not_found")
	ErrSlugTaken           = errors.New("slug_taken")
)
