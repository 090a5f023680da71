package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/specbook/internal/pricing"
	"github.com/smallbiznis/specbook/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error

	AddRoom(ctx context.Context, projectID string, req RoomRequest) (*RoomResponse, error)
	ListRooms(ctx context.Context, projectID string) ([]RoomResponse, error)
	DeleteRoom(ctx context.Context, projectID, roomID string) error

	AddLineItem(ctx context.Context, projectID string, req LineItemRequest) (*LineItemResponse, error)
	UpdateLineItem(ctx context.Context, projectID, lineItemID string, req UpdateLineItemRequest) (*LineItemResponse, error)
	RemoveLineItem(ctx context.Context, projectID, lineItemID string) error
	ListLineItems(ctx context.Context, projectID string) ([]LineItemResponse, error)

	Totals(ctx context.Context, projectID string) (*TotalsResponse, error)
}

type CreateRequest struct {
	Name         string              `json:"name"`
	ClientMeta   *pricing.ClientMeta `json:"client_meta"`
	ProposalMeta *ProposalMeta       `json:"proposal_meta"`
}

type UpdateRequest struct {
	Name         *string             `json:"name"`
	ClientMeta   *pricing.ClientMeta `json:"client_meta"`
	ProposalMeta *ProposalMeta       `json:"proposal_meta"`
}

type ListRequest struct {
	Status string `form:"status"`
	pagination.Pagination
}

type ListResponse struct {
	Items    []Response           `json:"items"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Response struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	Status       string              `json:"status"`
	ClientMeta   *pricing.ClientMeta `json:"client_meta,omitempty"`
	ProposalMeta *ProposalMeta       `json:"proposal_meta,omitempty"`
	ArchivedAt   *time.Time          `json:"archived_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type RoomRequest struct {
	Name string `json:"name"`
}

type RoomResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LineItemRequest adds one product to a project. UnitPrice is the manual
// override; numbers and numeric strings are accepted, null means computed.
type LineItemRequest struct {
	ProductID string `json:"product_id"`
	RoomID    string `json:"room_id"`
	Qty       int    `json:"qty"`
	UnitPrice any    `json:"unit_price"`
	Notes     string `json:"notes"`
}

type UpdateLineItemRequest struct {
	RoomID         *string `json:"room_id"`
	Qty            *int    `json:"qty"`
	UnitPrice      any     `json:"unit_price"`
	ClearUnitPrice bool    `json:"clear_unit_price"`
	Notes          *string `json:"notes"`
}

// LineItemResponse carries the stored line plus its live computed pricing.
type LineItemResponse struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"project_id"`
	RoomID    string              `json:"room_id,omitempty"`
	RoomName  string              `json:"room_name,omitempty"`
	ProductID string              `json:"product_id"`
	SKU       string              `json:"sku"`
	Product   string              `json:"product"`
	Qty       int                 `json:"qty"`
	UnitPrice *float64            `json:"unit_price,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	Pricing   pricing.LinePricing `json:"pricing"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type TotalsResponse struct {
	Currency     *string         `json:"currency"`
	ListSubtotal float64         `json:"list_subtotal"`
	Discounts    float64         `json:"discounts"`
	Subtotal     float64         `json:"subtotal"`
	Shipping     float64         `json:"shipping"`
	Tax          float64         `json:"tax"`
	Total        float64         `json:"total"`
	Margin       float64         `json:"margin"`
	ShippingMeta pricing.RateMeta `json:"shipping_meta"`
	TaxMeta      pricing.RateMeta `json:"tax_meta"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidQty          = errors.New("invalid_qty")
	ErrNotFound            = errors.New("not_found")
	ErrRoomNotFound        = errors.New("room_not_found")
	ErrLineItemNotFound    = errors.New("line_item_not_found")
	ErrProductNotFound     = errors.New("product_not_found")
	ErrProjectArchived     = errors.New("project_archived")
)
