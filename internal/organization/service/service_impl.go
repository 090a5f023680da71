package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/specbook/internal/organization/domain"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/pkg/db"
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
		log:   p.Log.Named("organization.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.Response, error) {
	org, err := s.currentOrg(ctx)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(org)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Slug:        slug.Make(name),
		PricingTier: strings.TrimSpace(req.PricingTier),
		TaxStatus:   strings.TrimSpace(req.TaxStatus),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("organization created", zap.Int64("org_id", org.ID), zap.String("slug", org.Slug))
	resp := s.toResponse(org)
	return &resp, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.UpdateSettingsRequest) (*domain.Response, error) {
	org, err := s.currentOrg(ctx)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		org.Name = name
	}
	if req.PricingTier != nil {
		org.PricingTier = strings.TrimSpace(*req.PricingTier)
	}
	if req.TaxStatus != nil {
		org.TaxStatus = strings.TrimSpace(*req.TaxStatus)
	}
	if req.ProposalDefaults != nil {
		raw, err := json.Marshal(req.ProposalDefaults)
		if err != nil {
			return nil, err
		}
		org.ProposalDefaults = datatypes.JSON(raw)
	}

	org.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, org); err != nil {
		return nil, err
	}

	resp := s.toResponse(org)
	return &resp, nil
}

func (s *Service) currentOrg(ctx context.Context) (*domain.Organization, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	org, err := s.repo.FindByID(ctx, s.db, int64(orgID))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	return org, nil
}

func (s *Service) toResponse(org *domain.Organization) domain.Response {
	resp := domain.Response{
		ID:          snowflake.ID(org.ID).String(),
		Name:        org.Name,
		Slug:        org.Slug,
		PricingTier: org.PricingTier,
		TaxStatus:   org.TaxStatus,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}
	if len(org.ProposalDefaults) > 0 {
		defaults := org.Defaults()
		resp.ProposalDefaults = &defaults
	}
	return resp
}
