package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/specbook/internal/config"
	"github.com/smallbiznis/specbook/internal/payment/domain"
	"go.uber.org/zap"
)

const providerPaystack = "paystack"

type paystack struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	log        *zap.Logger
}

// NewPaystack builds the Paystack HTTP adapter. With no secret key
// configured the adapter stays constructible but refuses transactions.
func NewPaystack(cfg config.Config, log *zap.Logger) domain.Gateway {
	return &paystack{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(cfg.PaystackBaseURL, "/"),
		secretKey:  cfg.PaystackSecretKey,
		log:        log.Named("payment.paystack"),
	}
}

func (p *paystack) Provider() string { return providerPaystack }

type initializePayload struct {
	Reference   string `json:"reference"`
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	Amount    int64   `json:"amount"`
	Currency  string  `json:"currency"`
	PaidAt    *string `json:"paid_at"`
}

func (p *paystack) InitializeTransaction(ctx context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error) {
	if p.secretKey == "" {
		return nil, domain.ErrGatewayDisabled
	}

	payload := initializePayload{
		Reference:   req.Reference,
		Email:       req.Email,
		Amount:      toMinorUnits(req.Amount),
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	envelope, err := p.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var data initializeData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, err
	}
	return &domain.InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (p *paystack) VerifyTransaction(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	if p.secretKey == "" {
		return nil, domain.ErrGatewayDisabled
	}

	envelope, err := p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var data verifyData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, err
	}

	result := &domain.VerifyResult{
		Reference: data.Reference,
		Status:    strings.ToLower(data.Status),
		Amount:    fromMinorUnits(data.Amount),
		Currency:  data.Currency,
		Raw:       envelope.Data,
	}
	if data.PaidAt != nil {
		if ts, err := time.Parse(time.RFC3339, *data.PaidAt); err == nil {
			result.PaidAt = &ts
		}
	}
	return result, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 hex digest of the raw
// body against the x-paystack-signature header value.
func (p *paystack) VerifyWebhookSignature(body []byte, signature string) bool {
	if p.secretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

func (p *paystack) do(ctx context.Context, method, path string, body io.Reader) (*paystackEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("paystack: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		p.log.Warn("paystack request failed",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", envelope.Message),
		)
		return nil, fmt.Errorf("paystack: %s", envelope.Message)
	}
	return &envelope, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
