package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/specbook/internal/pricing"
	"github.com/smallbiznis/specbook/internal/product/domain"
	"github.com/smallbiznis/specbook/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	limit := req.PageSize
	if limit <= 0 {
		limit = 25
	}

	filter := domain.ListFilter{
		Q:      strings.TrimSpace(req.Q),
		Active: req.Active,
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

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.Product, 0, len(items))
	for i := range items {
		rows = append(rows, &items[i])
	}
	pageInfo, rows := pagination.BuildCursorPageInfo(rows, limit, func(p *domain.Product) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: snowflake.ID(p.ID).String()})
		return token
	})

	resp := &domain.ListResponse{
		Items:    make([]domain.Response, 0, len(rows)),
		PageInfo: pageInfo,
	}
	for _, row := range rows {
		resp.Items = append(resp.Items, s.toResponse(row))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Response, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}

	item, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) UpsertBySKU(ctx context.Context, req domain.UpsertRequest) (*domain.Response, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	existing, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := existing
	if item == nil {
		item = &domain.Product{
			ID:        s.genID.Generate().Int64(),
			SKU:       sku,
			Active:    true,
			CreatedAt: now,
		}
	}

	item.Name = name
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			item.Description = nil
		} else {
			item.Description = &description
		}
	}
	if currency := strings.TrimSpace(req.Currency); currency != "" {
		item.Currency = strings.ToUpper(currency)
	} else if item.Currency == "" {
		item.Currency = "NGN"
	}
	item.UnitCost = pricing.ToNumber(req.UnitCost)
	item.MSRP = pricing.ToNumber(req.MSRP)
	item.TierBaseDiscount = pricing.ClampDiscount(pricing.ToNumber(req.TierBaseDiscount))
	item.TierPlusDiscount = pricing.ClampDiscount(pricing.ToNumber(req.TierPlusDiscount))
	if req.Active != nil {
		item.Active = *req.Active
	}

	if req.VolumeBreaks != nil {
		raw, err := json.Marshal(req.VolumeBreaks)
		if err != nil {
			return nil, err
		}
		item.VolumeBreaks = datatypes.JSON(raw)
	}
	if req.Pricing != nil {
		raw, err := json.Marshal(req.Pricing)
		if err != nil {
			return nil, err
		}
		item.Pricing = datatypes.JSON(raw)
	}
	if req.Supplier != nil {
		raw, err := json.Marshal(req.Supplier)
		if err != nil {
			return nil, err
		}
		item.Supplier = datatypes.JSON(raw)
	}

	item.UpdatedAt = now
	if existing == nil {
		err = s.repo.Create(ctx, s.db, item)
	} else {
		err = s.repo.Update(ctx, s.db, item)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("product upserted", zap.String("sku", sku), zap.Bool("created", existing == nil))
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:               snowflake.ID(p.ID).String(),
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Currency:         p.Currency,
		UnitCost:         p.UnitCost,
		MSRP:             p.MSRP,
		TierBaseDiscount: p.TierBaseDiscount,
		TierPlusDiscount: p.TierPlusDiscount,
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if len(p.VolumeBreaks) > 0 {
		_ = json.Unmarshal(p.VolumeBreaks, &resp.VolumeBreaks)
	}
	if len(p.Pricing) > 0 {
		var bag pricing.ProductPricing
		if err := json.Unmarshal(p.Pricing, &bag); err == nil {
			resp.Pricing = &bag
		}
	}
	if len(p.Supplier) > 0 {
		var supplier pricing.SupplierInfo
		if err := json.Unmarshal(p.Supplier, &supplier); err == nil {
			resp.Supplier = &supplier
		}
	}
	return resp
}
