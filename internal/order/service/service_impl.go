package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	bomdomain "github.com/smallbiznis/specbook/internal/bom/domain"
	"github.com/smallbiznis/specbook/internal/order/domain"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/internal/pricing"
	"github.com/smallbiznis/specbook/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	BOMs  bomdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	boms  bomdomain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		repo:  p.Repo,
		boms:  p.BOMs,
		genID: p.GenID,
	}
}

// CreateFromBOM derives an order from a frozen snapshot. Totals inherit
// from the snapshot unless the request overrides them; the live catalog
// is never consulted.
func (s *Service) CreateFromBOM(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	bomID, err := orgcontext.ParseID(req.BOMVersionID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	version, err := s.boms.FindByID(ctx, s.db, int64(orgID), bomID.Int64())
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, domain.ErrBOMNotFound
	}

	totals, err := version.DecodeTotals()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := s.genID.Generate()
	order := &domain.Order{
		ID:           id.Int64(),
		OrgID:        int64(orgID),
		ProjectID:    version.ProjectID,
		BOMVersionID: version.ID,
		Number:       fmt.Sprintf("SO-%s", id.String()),
		Status:       domain.StatusPending,
		Subtotal:     inheritAmount(req.Subtotal, totals.Subtotal),
		Shipping:     inheritAmount(req.Shipping, totals.Shipping),
		Tax:          inheritAmount(req.Tax, totals.Tax),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if totals.Currency != nil {
		order.Currency = *totals.Currency
	}
	if req.Total != nil {
		order.Total = pricing.ToNumber(req.Total)
	} else if totals.Total != nil {
		order.Total = *totals.Total
	} else {
		order.Total = order.Subtotal + order.Shipping + order.Tax
	}

	if err := order.AppendTracking(domain.TrackingEvent{
		Status:  domain.StatusPending,
		Message: "order created",
		At:      now,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("number", order.Number),
		zap.Int64("bom_version_id", version.ID),
	)
	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 25
	}

	filter := domain.ListFilter{
		Status: strings.TrimSpace(req.Status),
		Limit:  limit + 1,
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.AfterID = afterID.Int64()
	}

	items, err := s.repo.List(ctx, s.db, int64(orgID), filter)
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.Order, 0, len(items))
	for i := range items {
		rows = append(rows, &items[i])
	}
	pageInfo, rows := pagination.BuildCursorPageInfo(rows, limit, func(o *domain.Order) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: snowflake.ID(o.ID).String()})
		return token
	})

	resp := &domain.ListResponse{
		Items:    make([]domain.Response, 0, len(rows)),
		PageInfo: pageInfo,
	}
	for _, row := range rows {
		resp.Items = append(resp.Items, toResponse(row))
	}
	return resp, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req domain.StatusRequest) (*domain.Response, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		return nil, domain.ErrInvalidStatus
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	order.Status = status
	order.UpdatedAt = now
	if err := order.AppendTracking(domain.TrackingEvent{Status: status, At: now}); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.log.Info("order status updated",
		zap.String("number", order.Number),
		zap.String("status", status),
	)
	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) AddTracking(ctx context.Context, id string, req domain.TrackingRequest) (*domain.Response, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := domain.TrackingEvent{
		Status:         strings.TrimSpace(req.Status),
		Message:        strings.TrimSpace(req.Message),
		Carrier:        strings.TrimSpace(req.Carrier),
		TrackingNumber: strings.TrimSpace(req.TrackingNumber),
		At:             now,
	}
	if event.Status == "" {
		event.Status = order.Status
	}
	if err := order.AppendTracking(event); err != nil {
		return nil, err
	}

	order.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	resp := toResponse(order)
	return &resp, nil
}

// EnsureShareID is the same idempotent get-or-create rule used for BOM
// versions: once set, a share id is never reassigned.
func (s *Service) EnsureShareID(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.ShareID == nil {
		shareID := uuid.NewString()
		if _, err := s.repo.AssignShareID(ctx, s.db, order.ID, shareID); err != nil {
			return nil, err
		}
		order, err = s.loadOrder(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) TrackByShareID(ctx context.Context, shareID string) (*domain.PublicResponse, error) {
	shareID = strings.TrimSpace(shareID)
	if shareID == "" {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByShareID(ctx, s.db, shareID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	return &domain.PublicResponse{
		Number:    order.Number,
		Status:    order.Status,
		Currency:  order.Currency,
		Total:     order.Total,
		Tracking:  order.TrackingEvents(),
		UpdatedAt: order.UpdatedAt,
	}, nil
}

func (s *Service) loadOrder(ctx context.Context, id string) (*domain.Order, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	orderID, err := orgcontext.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByID(ctx, s.db, int64(orgID), orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func inheritAmount(override any, frozen *float64) float64 {
	if override != nil {
		return pricing.ToNumber(override)
	}
	if frozen != nil {
		return *frozen
	}
	return 0
}

func toResponse(o *domain.Order) domain.Response {
	return domain.Response{
		ID:           snowflake.ID(o.ID).String(),
		ProjectID:    snowflake.ID(o.ProjectID).String(),
		BOMVersionID: snowflake.ID(o.BOMVersionID).String(),
		Number:       o.Number,
		Status:       o.Status,
		Currency:     o.Currency,
		Subtotal:     o.Subtotal,
		Shipping:     o.Shipping,
		Tax:          o.Tax,
		Total:        o.Total,
		ShareID:      o.ShareID,
		Tracking:     o.TrackingEvents(),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
