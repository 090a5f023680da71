package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/specbook/internal/config"
	"github.com/smallbiznis/specbook/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/specbook/internal/order/domain"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/internal/payment/domain"
	"github.com/smallbiznis/specbook/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Config  config.Config
	Repo    repository.Repository[domain.Payment]
	Orders  orderdomain.Repository
	Gateway domain.Gateway
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     config.Config
	repo    repository.Repository[domain.Payment]
	orders  orderdomain.Repository
	gateway domain.Gateway
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		cfg:     p.Config,
		repo:    p.Repo,
		orders:  p.Orders,
		gateway: p.Gateway,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) Initialize(ctx context.Context, req domain.InitializePaymentRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}

	orderID, err := orgcontext.ParseID(req.OrderID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	order, err := s.orders.FindByID(ctx, s.db, int64(orgID), orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	currency := order.Currency
	if currency == "" {
		currency = "NGN"
	}
	reference := uuid.NewString()

	result, err := s.gateway.InitializeTransaction(ctx, domain.InitializeRequest{
		Reference:   reference,
		Email:       email,
		Amount:      order.Total,
		Currency:    currency,
		CallbackURL: s.cfg.PaymentCallbackURL,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:               s.genID.Generate().Int64(),
		OrgID:            order.OrgID,
		OrderID:          order.ID,
		Reference:        reference,
		Provider:         s.gateway.Provider(),
		Status:           domain.StatusInitialized,
		Amount:           order.Total,
		Currency:         currency,
		AuthorizationURL: result.AuthorizationURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("payment initialized",
		zap.String("reference", reference),
		zap.String("order_number", order.Number),
	)
	resp := toResponse(payment)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	paymentID, err := orgcontext.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	payment, err := s.repo.FindOne(ctx, &domain.Payment{ID: paymentID.Int64(), OrgID: int64(orgID)})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(payment)
	return &resp, nil
}

func (s *Service) Verify(ctx context.Context, reference string) (*domain.Response, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.ErrInvalidID
	}

	payment, err := s.repo.FindOne(ctx, &domain.Payment{Reference: reference})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}

	if !payment.Terminal() {
		verify, err := s.gateway.VerifyTransaction(ctx, reference)
		if err != nil {
			return nil, err
		}
		if err := s.apply(ctx, payment, verify, "verify"); err != nil {
			return nil, err
		}
	}

	resp := toResponse(payment)
	return &resp, nil
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook verifies the gateway signature against the raw body,
// then re-verifies the transaction with the gateway before applying any
// state change. Deliveries may repeat; terminal payments are no-ops.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return domain.ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return err
	}
	reference := strings.TrimSpace(event.Data.Reference)
	if reference == "" {
		return domain.ErrNotFound
	}

	payment, err := s.repo.FindOne(ctx, &domain.Payment{Reference: reference})
	if err != nil {
		return err
	}
	if payment == nil {
		return domain.ErrNotFound
	}
	if payment.Terminal() {
		return nil
	}

	verify, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return err
	}
	return s.apply(ctx, payment, verify, event.Event)
}

func (s *Service) apply(ctx context.Context, payment *domain.Payment, verify *domain.VerifyResult, eventType string) error {
	if payment.Terminal() {
		return nil
	}

	switch verify.Status {
	case "success":
		payment.Status = domain.StatusSuccess
		payment.PaidAt = verify.PaidAt
		if payment.PaidAt == nil {
			now := time.Now().UTC()
			payment.PaidAt = &now
		}
	case "failed", "abandoned", "reversed":
		payment.Status = domain.StatusFailed
	default:
		payment.Status = domain.StatusPending
	}
	payment.UpdatedAt = time.Now().UTC()
	if len(verify.Raw) > 0 {
		payment.GatewayMeta = datatypes.JSON(verify.Raw)
	}

	updates := map[string]any{
		"status":       payment.Status,
		"paid_at":      payment.PaidAt,
		"gateway_meta": payment.GatewayMeta,
		"updated_at":   payment.UpdatedAt,
	}
	// The payment row and the order confirmation commit together: a
	// failed order update rolls the payment back, so the gateway's
	// redelivery retries the whole application.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTrx(tx).Update(ctx, snowflake.ID(payment.ID).String(), updates); err != nil {
			return err
		}
		if payment.Status == domain.StatusSuccess {
			return s.confirmOrder(ctx, tx, payment)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordPaymentEvent(ctx, payment.Provider, eventType)
	s.log.Info("payment updated",
		zap.String("reference", payment.Reference),
		zap.String("status", payment.Status),
	)
	return nil
}

// confirmOrder moves the paid order from pending to confirmed. Orders
// already past pending are left alone.
func (s *Service) confirmOrder(ctx context.Context, tx *gorm.DB, payment *domain.Payment) error {
	order, err := s.orders.FindByID(ctx, tx, payment.OrgID, payment.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}
	if !orderdomain.CanTransition(order.Status, orderdomain.StatusConfirmed) {
		return nil
	}

	now := time.Now().UTC()
	order.Status = orderdomain.StatusConfirmed
	order.UpdatedAt = now
	if err := order.AppendTracking(orderdomain.TrackingEvent{
		Status:  orderdomain.StatusConfirmed,
		Message: "payment received",
		At:      now,
	}); err != nil {
		return err
	}
	return s.orders.Update(ctx, tx, order)
}

func toResponse(p *domain.Payment) domain.Response {
	return domain.Response{
		ID:               snowflake.ID(p.ID).String(),
		OrderID:          snowflake.ID(p.OrderID).String(),
		Reference:        p.Reference,
		Provider:         p.Provider,
		Status:           p.Status,
		Amount:           p.Amount,
		Currency:         p.Currency,
		AuthorizationURL: p.AuthorizationURL,
		PaidAt:           p.PaidAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
