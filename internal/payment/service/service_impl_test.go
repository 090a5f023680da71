package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/specbook/internal/config"
	orderdomain "github.com/smallbiznis/specbook/internal/order/domain"
	orderrepository "github.com/smallbiznis/specbook/internal/order/repository"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/internal/payment/domain"
	"github.com/smallbiznis/specbook/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubGateway struct {
	verifyStatus string
	verifyCalls  int
	initErr      error
}

func (g *stubGateway) Provider() string { return "paystack" }

func (g *stubGateway) InitializeTransaction(ctx context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &domain.InitializeResult{
		AuthorizationURL: "https://checkout.example/" + req.Reference,
		AccessCode:       "code",
		Reference:        req.Reference,
	}, nil
}

func (g *stubGateway) VerifyTransaction(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	g.verifyCalls++
	return &domain.VerifyResult{
		Reference: reference,
		Status:    g.verifyStatus,
		Amount:    18775,
		Currency:  "NGN",
		Raw:       []byte(`{"reference":"` + reference + `"}`),
	}, nil
}

func (g *stubGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return signature == "good"
}

type paymentEnv struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	gateway *stubGateway
	orgID   int64
	order   orderdomain.Order
}

func setupPaymentService(t *testing.T) *paymentEnv {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&orderdomain.Order{}, &domain.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	e := &paymentEnv{
		db:      db,
		node:    node,
		gateway: &stubGateway{verifyStatus: "success"},
		orgID:   node.Generate().Int64(),
	}
	e.svc = New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Config:  config.Config{PaymentCallbackURL: "https://app.example/pay/callback"},
		Repo:    repository.ProvideStore[domain.Payment](db),
		Orders:  orderrepository.Provide(),
		Gateway: e.gateway,
	})

	id := node.Generate()
	e.order = orderdomain.Order{
		ID:           id.Int64(),
		OrgID:        e.orgID,
		ProjectID:    node.Generate().Int64(),
		BOMVersionID: node.Generate().Int64(),
		Number:       fmt.Sprintf("SO-%s", id.String()),
		Status:       orderdomain.StatusPending,
		Currency:     "NGN",
		Subtotal:     17000,
		Shipping:     500,
		Tax:          1275,
		Total:        18775,
	}
	if err := db.Create(&e.order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	return e
}

func (e *paymentEnv) ctx() context.Context {
	return orgcontext.WithOrgID(context.Background(), snowflake.ID(e.orgID))
}

func (e *paymentEnv) orderID() string {
	return snowflake.ID(e.order.ID).String()
}

func (e *paymentEnv) initialize(t *testing.T) *domain.Response {
	t.Helper()
	resp, err := e.svc.Initialize(e.ctx(), domain.InitializePaymentRequest{
		OrderID: e.orderID(),
		Email:   "client@example.com",
	})
	if err != nil {
		t.Fatalf("initialize payment: %v", err)
	}
	return resp
}

func webhookBody(reference string) []byte {
	return []byte(`{"event":"charge.success","data":{"reference":"` + reference + `"}}`)
}

func TestInitializePayment(t *testing.T) {
	e := setupPaymentService(t)

	resp := e.initialize(t)
	if resp.Status != domain.StatusInitialized {
		t.Fatalf("expected initialized, got %s", resp.Status)
	}
	if resp.Amount != 18775 || resp.Currency != "NGN" {
		t.Fatalf("expected order amount 18775 NGN, got %v %s", resp.Amount, resp.Currency)
	}
	if resp.AuthorizationURL == "" {
		t.Fatal("expected authorization url")
	}
	if resp.Reference == "" {
		t.Fatal("expected a generated reference")
	}
}

func TestInitializePaymentValidation(t *testing.T) {
	e := setupPaymentService(t)
	ctx := e.ctx()

	if _, err := e.svc.Initialize(ctx, domain.InitializePaymentRequest{
		OrderID: e.orderID(),
		Email:   "not-an-email",
	}); err != domain.ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	unknown := snowflake.ID(e.node.Generate().Int64()).String()
	if _, err := e.svc.Initialize(ctx, domain.InitializePaymentRequest{
		OrderID: unknown,
		Email:   "client@example.com",
	}); err != domain.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestInitializePaymentGatewayDown(t *testing.T) {
	e := setupPaymentService(t)
	e.gateway.initErr = domain.ErrGatewayDisabled

	_, err := e.svc.Initialize(e.ctx(), domain.InitializePaymentRequest{
		OrderID: e.orderID(),
		Email:   "client@example.com",
	})
	if err != domain.ErrGatewayDisabled {
		t.Fatalf("expected ErrGatewayDisabled, got %v", err)
	}

	// No payment row is written when the gateway refuses.
	var count int64
	if err := e.db.Model(&domain.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no payment rows, got %d", count)
	}
}

func TestWebhookConfirmsOrder(t *testing.T) {
	e := setupPaymentService(t)
	ctx := e.ctx()
	payment := e.initialize(t)

	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "good"); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}

	verified, err := e.svc.Verify(ctx, payment.Reference)
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if verified.Status != domain.StatusSuccess {
		t.Fatalf("expected success, got %s", verified.Status)
	}
	if verified.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}

	var order orderdomain.Order
	if err := e.db.First(&order, e.order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.Status != orderdomain.StatusConfirmed {
		t.Fatalf("expected confirmed order, got %s", order.Status)
	}
	events := order.TrackingEvents()
	if len(events) == 0 || events[len(events)-1].Message != "payment received" {
		t.Fatalf("expected payment tracking event, got %+v", events)
	}
}

func TestWebhookRedeliveryIsNoOp(t *testing.T) {
	e := setupPaymentService(t)
	ctx := e.ctx()
	payment := e.initialize(t)

	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "good"); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	calls := e.gateway.verifyCalls

	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "good"); err != nil {
		t.Fatalf("redelivered webhook: %v", err)
	}
	if e.gateway.verifyCalls != calls {
		t.Fatalf("expected no gateway verify on redelivery, got %d extra", e.gateway.verifyCalls-calls)
	}

	var order orderdomain.Order
	if err := e.db.First(&order, e.order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if len(order.TrackingEvents()) != 1 {
		t.Fatalf("expected a single tracking event, got %d", len(order.TrackingEvents()))
	}
}

func TestWebhookOrderUpdateFailureKeepsPaymentRetryable(t *testing.T) {
	e := setupPaymentService(t)
	ctx := e.ctx()
	payment := e.initialize(t)

	// The order row goes missing before the webhook lands.
	if err := e.db.Delete(&orderdomain.Order{}, e.order.ID).Error; err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "good"); err != domain.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	// The payment write rolled back with the failed confirmation, so the
	// stored row is still non-terminal.
	var stored domain.Payment
	if err := e.db.First(&stored, "reference = ?", payment.Reference).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Status != domain.StatusInitialized {
		t.Fatalf("expected payment to stay initialized, got %s", stored.Status)
	}

	// Once the order is back, a redelivery completes both writes.
	if err := e.db.Create(&e.order).Error; err != nil {
		t.Fatalf("restore order: %v", err)
	}
	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "good"); err != nil {
		t.Fatalf("redelivered webhook: %v", err)
	}

	var order orderdomain.Order
	if err := e.db.First(&order, e.order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.Status != orderdomain.StatusConfirmed {
		t.Fatalf("expected confirmed order, got %s", order.Status)
	}
	if err := e.db.First(&stored, "reference = ?", payment.Reference).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Status != domain.StatusSuccess {
		t.Fatalf("expected success, got %s", stored.Status)
	}
}

func TestWebhookRejections(t *testing.T) {
	e := setupPaymentService(t)
	ctx := e.ctx()
	payment := e.initialize(t)

	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "bad"); err != domain.ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if err := e.svc.HandleWebhook(ctx, webhookBody("unknown-ref"), "good"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWebhookFailureKeepsOrderPending(t *testing.T) {
	e := setupPaymentService(t)
	ctx := e.ctx()
	payment := e.initialize(t)
	e.gateway.verifyStatus = "abandoned"

	if err := e.svc.HandleWebhook(ctx, webhookBody(payment.Reference), "good"); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}

	verified, err := e.svc.Verify(ctx, payment.Reference)
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if verified.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", verified.Status)
	}

	var order orderdomain.Order
	if err := e.db.First(&order, e.order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.Status != orderdomain.StatusPending {
		t.Fatalf("expected order to stay pending, got %s", order.Status)
	}
}
