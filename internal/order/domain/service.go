package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/specbook/pkg/db/pagination"
)

type Service interface {
	CreateFromBOM(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	UpdateStatus(ctx context.Context, id string, req StatusRequest) (*Response, error)
	AddTracking(ctx context.Context, id string, req TrackingRequest) (*Response, error)
	EnsureShareID(ctx context.Context, id string) (*Response, error)

	// Public share-link surface.
	TrackByShareID(ctx context.Context, shareID string) (*PublicResponse, error)
}

// CreateRequest converts one frozen BOM version into an order. Amount
// overrides accept numbers or numeric strings; absent values inherit the
// snapshot's totals.
type CreateRequest struct {
	BOMVersionID string `json:"bom_version_id"`
	Subtotal     any    `json:"subtotal"`
	Shipping     any    `json:"shipping"`
	Tax          any    `json:"tax"`
	Total        any    `json:"total"`
}

type ListRequest struct {
	Status string `form:"status"`
	pagination.Pagination
}

type ListResponse struct {
	Items    []Response           `json:"items"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type TrackingRequest struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type Response struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"project_id"`
	BOMVersionID string          `json:"bom_version_id"`
	Number       string          `json:"number"`
	Status       string          `json:"status"`
	Currency     string          `json:"currency,omitempty"`
	Subtotal     float64         `json:"subtotal"`
	Shipping     float64         `json:"shipping"`
	Tax          float64         `json:"tax"`
	Total        float64         `json:"total"`
	ShareID      *string         `json:"share_id,omitempty"`
	Tracking     []TrackingEvent `json:"tracking,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PublicResponse is the reduced view served on share links.
type PublicResponse struct {
	Number    string          `json:"number"`
	Status    string          `json:"status"`
	Currency  string          `json:"currency,omitempty"`
	Total     float64         `json:"total"`
	Tracking  []TrackingEvent `json:"tracking,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrNotFound            = errors.New("not_found")
	ErrBOMNotFound         = errors.New("bom_version_not_found")
)
