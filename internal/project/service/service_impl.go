package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/specbook/internal/observability/metrics"
	orgdomain "github.com/smallbiznis/specbook/internal/organization/domain"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/internal/pricing"
	productdomain "github.com/smallbiznis/specbook/internal/product/domain"
	"github.com/smallbiznis/specbook/internal/project/domain"
	"github.com/smallbiznis/specbook/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Products productdomain.Repository
	Orgs     orgdomain.Repository
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	products productdomain.Repository
	orgs     orgdomain.Repository
	genID    *snowflake.Node
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("project.service"),
		repo:     p.Repo,
		products: p.Products,
		orgs:     p.Orgs,
		genID:    p.GenID,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:        s.genID.Generate().Int64(),
		OrgID:     int64(orgID),
		Name:      name,
		Slug:      slug.Make(name),
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.ClientMeta != nil {
		raw, err := json.Marshal(req.ClientMeta)
		if err != nil {
			return nil, err
		}
		project.ClientMeta = datatypes.JSON(raw)
	}
	if req.ProposalMeta != nil {
		raw, err := json.Marshal(req.ProposalMeta)
		if err != nil {
			return nil, err
		}
		project.ProposalMeta = datatypes.JSON(raw)
	}

	if err := s.repo.CreateProject(ctx, s.db, project); err != nil {
		return nil, err
	}

	s.log.Info("project created", zap.Int64("project_id", project.ID), zap.Int64("org_id", project.OrgID))
	resp := s.toResponse(project)
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

	filter := domain.ProjectFilter{
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

	items, err := s.repo.ListProjects(ctx, s.db, int64(orgID), filter)
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.Project, 0, len(items))
	for i := range items {
		rows = append(rows, &items[i])
	}
	pageInfo, rows := pagination.BuildCursorPageInfo(rows, limit, func(p *domain.Project) string {
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
	project, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(project)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	project, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.Mutable() {
		return nil, domain.ErrProjectArchived
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		project.Name = name
		project.Slug = slug.Make(name)
	}
	if req.ClientMeta != nil {
		raw, err := json.Marshal(req.ClientMeta)
		if err != nil {
			return nil, err
		}
		project.ClientMeta = datatypes.JSON(raw)
	}
	if req.ProposalMeta != nil {
		raw, err := json.Marshal(req.ProposalMeta)
		if err != nil {
			return nil, err
		}
		project.ProposalMeta = datatypes.JSON(raw)
	}

	project.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProject(ctx, s.db, project); err != nil {
		return nil, err
	}

	resp := s.toResponse(project)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	project, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != domain.StatusArchived {
		now := time.Now().UTC()
		project.Status = domain.StatusArchived
		project.ArchivedAt = &now
		project.UpdatedAt = now
		if err := s.repo.UpdateProject(ctx, s.db, project); err != nil {
			return nil, err
		}
	}

	resp := s.toResponse(project)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	project, err := s.loadProject(ctx, id)
	if err != nil {
		return err
	}

	project.Status = domain.StatusDeleted
	project.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateProject(ctx, s.db, project)
}

func (s *Service) AddRoom(ctx context.Context, projectID string, req domain.RoomRequest) (*domain.RoomResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Mutable() {
		return nil, domain.ErrProjectArchived
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	room := &domain.Room{
		ID:        s.genID.Generate().Int64(),
		OrgID:     project.OrgID,
		ProjectID: project.ID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateRoom(ctx, s.db, room); err != nil {
		return nil, err
	}

	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *Service) ListRooms(ctx context.Context, projectID string) ([]domain.RoomResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.repo.ListRooms(ctx, s.db, project.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, toRoomResponse(&rooms[i]))
	}
	return resp, nil
}

func (s *Service) DeleteRoom(ctx context.Context, projectID, roomID string) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.Mutable() {
		return domain.ErrProjectArchived
	}

	id, err := orgcontext.ParseID(roomID)
	if err != nil {
		return domain.ErrInvalidID
	}
	room, err := s.repo.FindRoomByID(ctx, s.db, project.OrgID, id.Int64())
	if err != nil {
		return err
	}
	if room == nil || room.ProjectID != project.ID {
		return domain.ErrRoomNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DetachRoomFromLineItems(ctx, tx, room.ID); err != nil {
			return err
		}
		return s.repo.DeleteRoom(ctx, tx, room.ID)
	})
}

func (s *Service) AddLineItem(ctx context.Context, projectID string, req domain.LineItemRequest) (*domain.LineItemResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Mutable() {
		return nil, domain.ErrProjectArchived
	}
	if req.Qty <= 0 {
		return nil, domain.ErrInvalidQty
	}

	productID, err := orgcontext.ParseID(req.ProductID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	product, err := s.products.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	now := time.Now().UTC()
	item := &domain.LineItem{
		ID:        s.genID.Generate().Int64(),
		OrgID:     project.OrgID,
		ProjectID: project.ID,
		ProductID: product.ID,
		Qty:       req.Qty,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if roomRef := strings.TrimSpace(req.RoomID); roomRef != "" {
		roomID, err := orgcontext.ParseID(roomRef)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		room, err := s.repo.FindRoomByID(ctx, s.db, project.OrgID, roomID.Int64())
		if err != nil {
			return nil, err
		}
		if room == nil || room.ProjectID != project.ID {
			return nil, domain.ErrRoomNotFound
		}
		id := room.ID
		item.RoomID = &id
	}
	if req.UnitPrice != nil {
		override := pricing.ToNumber(req.UnitPrice)
		item.UnitPrice = &override
	}

	if err := s.repo.CreateLineItem(ctx, s.db, item); err != nil {
		return nil, err
	}

	return s.lineItemResponse(ctx, project, item)
}

func (s *Service) UpdateLineItem(ctx context.Context, projectID, lineItemID string, req domain.UpdateLineItemRequest) (*domain.LineItemResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Mutable() {
		return nil, domain.ErrProjectArchived
	}

	item, err := s.loadLineItem(ctx, project, lineItemID)
	if err != nil {
		return nil, err
	}

	if req.Qty != nil {
		if *req.Qty <= 0 {
			return nil, domain.ErrInvalidQty
		}
		item.Qty = *req.Qty
	}
	if req.RoomID != nil {
		if roomRef := strings.TrimSpace(*req.RoomID); roomRef == "" {
			item.RoomID = nil
		} else {
			roomID, err := orgcontext.ParseID(roomRef)
			if err != nil {
				return nil, domain.ErrInvalidID
			}
			room, err := s.repo.FindRoomByID(ctx, s.db, project.OrgID, roomID.Int64())
			if err != nil {
				return nil, err
			}
			if room == nil || room.ProjectID != project.ID {
				return nil, domain.ErrRoomNotFound
			}
			id := room.ID
			item.RoomID = &id
		}
	}
	if req.ClearUnitPrice {
		item.UnitPrice = nil
	} else if req.UnitPrice != nil {
		override := pricing.ToNumber(req.UnitPrice)
		item.UnitPrice = &override
	}
	if req.Notes != nil {
		item.Notes = strings.TrimSpace(*req.Notes)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateLineItem(ctx, s.db, item); err != nil {
		return nil, err
	}

	return s.lineItemResponse(ctx, project, item)
}

func (s *Service) RemoveLineItem(ctx context.Context, projectID, lineItemID string) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.Mutable() {
		return domain.ErrProjectArchived
	}

	item, err := s.loadLineItem(ctx, project, lineItemID)
	if err != nil {
		return err
	}
	return s.repo.DeleteLineItem(ctx, s.db, item.ID)
}

func (s *Service) ListLineItems(ctx context.Context, projectID string) ([]domain.LineItemResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	items, rooms, products, params, err := s.loadPricingContext(ctx, project)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.LineItemResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		resp = append(resp, buildLineItemResponse(item, &product, rooms, params))
	}
	return resp, nil
}

func (s *Service) Totals(ctx context.Context, projectID string) (*domain.TotalsResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totals, err := s.computeTotals(ctx, project)
	if err != nil {
		return nil, err
	}

	return &domain.TotalsResponse{
		Currency:     totals.Currency,
		ListSubtotal: totals.ListSubtotal,
		Discounts:    totals.Discounts,
		Subtotal:     totals.Subtotal,
		Shipping:     totals.Shipping,
		Tax:          totals.Tax,
		Total:        totals.Total,
		Margin:       totals.Margin,
		ShippingMeta: totals.ShippingMeta,
		TaxMeta:      totals.TaxMeta,
	}, nil
}

func (s *Service) computeTotals(ctx context.Context, project *domain.Project) (*pricing.ProjectTotals, error) {
	items, rooms, products, params, err := s.loadPricingContext(ctx, project)
	if err != nil {
		return nil, err
	}

	inputs := domain.BuildLineInputs(items, rooms, products)
	totals := pricing.ComputeProjectTotals(inputs, params)
	s.metrics.RecordPricingRun(ctx)
	return &totals, nil
}

func (s *Service) loadPricingContext(ctx context.Context, project *domain.Project) ([]domain.LineItem, map[int64]string, map[int64]productdomain.Product, pricing.Params, error) {
	var params pricing.Params

	org, err := s.orgs.FindByID(ctx, s.db, project.OrgID)
	if err != nil {
		return nil, nil, nil, params, err
	}
	if org != nil {
		params.PricingTier = org.PricingTier
		params.TaxStatus = org.TaxStatus
	}
	params.ClientMeta = project.Client()

	items, err := s.repo.ListLineItems(ctx, s.db, project.ID)
	if err != nil {
		return nil, nil, nil, params, err
	}

	rooms, err := s.repo.ListRooms(ctx, s.db, project.ID)
	if err != nil {
		return nil, nil, nil, params, err
	}
	roomNames := make(map[int64]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	productIDs := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}
	productRows, err := s.products.FindByIDs(ctx, s.db, productIDs)
	if err != nil {
		return nil, nil, nil, params, err
	}
	products := make(map[int64]productdomain.Product, len(productRows))
	for _, row := range productRows {
		products[row.ID] = row
	}

	return items, roomNames, products, params, nil
}

func (s *Service) lineItemResponse(ctx context.Context, project *domain.Project, item *domain.LineItem) (*domain.LineItemResponse, error) {
	_, rooms, products, params, err := s.loadPricingContext(ctx, project)
	if err != nil {
		return nil, err
	}
	product, ok := products[item.ProductID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	resp := buildLineItemResponse(item, &product, rooms, params)
	return &resp, nil
}

func buildLineItemResponse(item *domain.LineItem, product *productdomain.Product, roomNames map[int64]string, params pricing.Params) domain.LineItemResponse {
	input := pricing.LineInput{
		ID:      snowflake.ID(item.ID).String(),
		Qty:     item.Qty,
		Notes:   item.Notes,
		Product: product.PricingInput(),
	}
	if item.RoomID != nil {
		input.RoomName = roomNames[*item.RoomID]
	}
	if item.UnitPrice != nil {
		input.UnitPrice = *item.UnitPrice
	}

	resp := domain.LineItemResponse{
		ID:        snowflake.ID(item.ID).String(),
		ProjectID: snowflake.ID(item.ProjectID).String(),
		ProductID: snowflake.ID(item.ProductID).String(),
		SKU:       product.SKU,
		Product:   product.Name,
		Qty:       item.Qty,
		UnitPrice: item.UnitPrice,
		Notes:     item.Notes,
		Pricing:   pricing.ComputeLinePricing(input, params),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.RoomID != nil {
		resp.RoomID = snowflake.ID(*item.RoomID).String()
		resp.RoomName = roomNames[*item.RoomID]
	}
	return resp
}

func (s *Service) loadProject(ctx context.Context, id string) (*domain.Project, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	projectID, err := orgcontext.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	project, err := s.repo.FindProjectByID(ctx, s.db, int64(orgID), projectID.Int64())
	if err != nil {
		return nil, err
	}
	if project == nil || project.Status == domain.StatusDeleted {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func (s *Service) loadLineItem(ctx context.Context, project *domain.Project, id string) (*domain.LineItem, error) {
	itemID, err := orgcontext.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindLineItemByID(ctx, s.db, project.OrgID, itemID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil || item.ProjectID != project.ID {
		return nil, domain.ErrLineItemNotFound
	}
	return item, nil
}

func (s *Service) toResponse(p *domain.Project) domain.Response {
	resp := domain.Response{
		ID:         snowflake.ID(p.ID).String(),
		Name:       p.Name,
		Slug:       p.Slug,
		Status:     p.Status,
		ArchivedAt: p.ArchivedAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	resp.ClientMeta = p.Client()
	if len(p.ProposalMeta) > 0 {
		meta := p.Proposal()
		resp.ProposalMeta = &meta
	}
	return resp
}

func toRoomResponse(room *domain.Room) domain.RoomResponse {
	return domain.RoomResponse{
		ID:        snowflake.ID(room.ID).String(),
		ProjectID: snowflake.ID(room.ProjectID).String(),
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	}
}
