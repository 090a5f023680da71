package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Initialize(ctx context.Context, req InitializePaymentRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Verify(ctx context.Context, reference string) (*Response, error)

	// HandleWebhook processes a raw gateway event. Signature verification
	// happens against the raw body before any parsing.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type InitializePaymentRequest struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
}

type Response struct {
	ID               string     `json:"id"`
	OrderID          string     `json:"order_id"`
	Reference        string     `json:"reference"`
	Provider         string     `json:"provider"`
	Status           string     `json:"status"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency,omitempty"`
	AuthorizationURL string     `json:"authorization_url,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrNotFound            = errors.New("not_found")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrGatewayDisabled     = errors.New("gateway_disabled")
)
