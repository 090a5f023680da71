package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/specbook/internal/config"
	"github.com/smallbiznis/specbook/internal/payment/domain"
	"go.uber.org/zap"
)

func newTestGateway(baseURL, secret string) domain.Gateway {
	return NewPaystack(config.Config{
		PaystackBaseURL:   baseURL,
		PaystackSecretKey: secret,
	}, zap.NewNop())
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "sk_test_abc"
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	gw := newTestGateway("https://api.paystack.co", secret)

	if !gw.VerifyWebhookSignature(body, sign(secret, body)) {
		t.Fatal("expected valid signature to verify")
	}
	if gw.VerifyWebhookSignature(body, sign("wrong-secret", body)) {
		t.Fatal("expected mismatched signature to fail")
	}
	if gw.VerifyWebhookSignature(body, "") {
		t.Fatal("expected empty signature to fail")
	}
	if gw.VerifyWebhookSignature([]byte(`tampered`), sign(secret, body)) {
		t.Fatal("expected tampered body to fail")
	}

	disabled := newTestGateway("https://api.paystack.co", "")
	if disabled.VerifyWebhookSignature(body, sign(secret, body)) {
		t.Fatal("expected verification to fail with no secret configured")
	}
}

func TestInitializeTransaction(t *testing.T) {
	const secret = "sk_test_abc"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+secret {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		// 18775.00 NGN becomes 1877500 kobo.
		if got := payload["amount"].(float64); got != 1877500 {
			t.Fatalf("expected minor units 1877500, got %v", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc",
				"access_code":       "abc",
				"reference":         payload["reference"],
			},
		})
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL, secret)
	result, err := gw.InitializeTransaction(context.Background(), domain.InitializeRequest{
		Reference: "ref-1",
		Email:     "client@example.com",
		Amount:    18775,
		Currency:  "NGN",
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if result.AuthorizationURL != "https://checkout.paystack.com/abc" {
		t.Fatalf("unexpected authorization url %s", result.AuthorizationURL)
	}
	if result.Reference != "ref-1" {
		t.Fatalf("unexpected reference %s", result.Reference)
	}
}

func TestInitializeTransactionDisabled(t *testing.T) {
	gw := newTestGateway("https://api.paystack.co", "")
	_, err := gw.InitializeTransaction(context.Background(), domain.InitializeRequest{Reference: "ref-1"})
	if err != domain.ErrGatewayDisabled {
		t.Fatalf("expected ErrGatewayDisabled, got %v", err)
	}
}

func TestVerifyTransaction(t *testing.T) {
	const secret = "sk_test_abc"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"reference": "ref-1",
				"status":    "SUCCESS",
				"amount":    1877500,
				"currency":  "NGN",
				"paid_at":   "2026-08-28T10:30:00Z",
			},
		})
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL, secret)
	result, err := gw.VerifyTransaction(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected lowercased status, got %s", result.Status)
	}
	if result.Amount != 18775 {
		t.Fatalf("expected major units 18775, got %v", result.Amount)
	}
	if result.PaidAt == nil {
		t.Fatal("expected paid_at to parse")
	}
	if len(result.Raw) == 0 {
		t.Fatal("expected raw gateway data to be retained")
	}
}

func TestVerifyTransactionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Transaction reference not found",
		})
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL, "sk_test_abc")
	if _, err := gw.VerifyTransaction(context.Background(), "missing"); err == nil {
		t.Fatal("expected error from failed gateway response")
	}
}
