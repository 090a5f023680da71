package domain

import (
	"context"
	"encoding/json"
	"time"
)

// InitializeRequest starts a gateway transaction. Amount is in major
// currency units; adapters convert to the gateway's wire format.
type InitializeRequest struct {
	Reference   string
	Email       string
	Amount      float64
	Currency    string
	CallbackURL string
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyResult struct {
	Reference string
	Status    string
	Amount    float64
	Currency  string
	PaidAt    *time.Time
	Raw       json.RawMessage
}

// Gateway is the payment provider client. Implementations are keyed by
// a caller-supplied reference string and must be safe to call repeatedly
// with the same reference.
type Gateway interface {
	Provider() string
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}
