package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/specbook/internal/bom/domain"
	"github.com/smallbiznis/specbook/internal/observability/metrics"
	orgdomain "github.com/smallbiznis/specbook/internal/organization/domain"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/internal/pricing"
	productdomain "github.com/smallbiznis/specbook/internal/product/domain"
	projectdomain "github.com/smallbiznis/specbook/internal/project/domain"
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
	Projects projectdomain.Repository
	Products productdomain.Repository
	Orgs     orgdomain.Repository
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	projects projectdomain.Repository
	products productdomain.Repository
	orgs     orgdomain.Repository
	genID    *snowflake.Node
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("bom.service"),
		repo:     p.Repo,
		projects: p.Projects,
		products: p.Products,
		orgs:     p.Orgs,
		genID:    p.GenID,
		metrics:  p.Metrics,
	}
}

// CreateSnapshot prices the project's current line items and freezes them
// into a new immutable version. Snapshots stay available on archived
// projects; only catalog and project writes are blocked there.
func (s *Service) CreateSnapshot(ctx context.Context, projectID string) (*domain.Response, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totals, err := s.priceProject(ctx, project)
	if err != nil {
		return nil, err
	}

	header := domain.SnapshotProject{
		ID:         snowflake.ID(project.ID).String(),
		Name:       project.Name,
		Status:     project.Status,
		ClientMeta: project.Client(),
	}
	payload, frozenTotals := domain.BuildSnapshot(header, totals)

	rawSnapshot, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	rawTotals, err := json.Marshal(frozenTotals)
	if err != nil {
		return nil, err
	}

	identity, _ := orgcontext.IdentityFromContext(ctx)
	version := &domain.BOMVersion{
		ID:        s.genID.Generate().Int64(),
		OrgID:     project.OrgID,
		ProjectID: project.ID,
		Snapshot:  datatypes.JSON(rawSnapshot),
		Totals:    datatypes.JSON(rawTotals),
		CreatedBy: int64(identity.UserID),
		CreatedAt: time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := s.repo.MaxVersion(ctx, tx, project.ID)
		if err != nil {
			return err
		}
		version.Version = max + 1
		return s.repo.Create(ctx, tx, version)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSnapshot(ctx)
	s.log.Info("bom snapshot created",
		zap.Int64("project_id", project.ID),
		zap.Int("version", version.Version),
	)

	resp, err := s.toResponse(version)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	version, err := s.loadVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(version)
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]domain.Response, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	versions, err := s.repo.ListByProject(ctx, s.db, project.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(versions))
	for i := range versions {
		item, err := s.toResponse(&versions[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *item)
	}
	return resp, nil
}

// EnsureShareID is an idempotent get-or-create: a share id, once set, is
// never reassigned. Concurrent callers converge on the winner's value.
func (s *Service) EnsureShareID(ctx context.Context, id string) (*domain.Response, error) {
	version, err := s.loadVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	if version.ShareID == nil {
		shareID := uuid.NewString()
		if _, err := s.repo.AssignShareID(ctx, s.db, version.ID, shareID); err != nil {
			return nil, err
		}
		version, err = s.loadVersion(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	return s.toResponse(version)
}

func (s *Service) ExportCSV(ctx context.Context, id string) (*domain.CSVExport, error) {
	version, err := s.loadVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := version.DecodeSnapshot()
	if err != nil {
		return nil, err
	}
	totals, err := version.DecodeTotals()
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCSVExport(ctx)
	return &domain.CSVExport{
		Filename: fmt.Sprintf("bom-%s-v%d.csv", snowflake.ID(version.ProjectID).String(), version.Version),
		Content:  domain.BuildCSV(payload, &totals),
	}, nil
}

// ProposalView renders the marked-up external view of a shared snapshot.
// Markup is resolved at view time from project and org metadata; the
// frozen snapshot itself is never touched.
func (s *Service) ProposalView(ctx context.Context, shareID string) (*domain.Proposal, error) {
	version, err := s.findShared(ctx, shareID)
	if err != nil {
		return nil, err
	}

	payload, err := version.DecodeSnapshot()
	if err != nil {
		return nil, err
	}
	totals, err := version.DecodeTotals()
	if err != nil {
		return nil, err
	}

	project, err := s.projects.FindProjectByID(ctx, s.db, version.OrgID, version.ProjectID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.FindByID(ctx, s.db, version.OrgID)
	if err != nil {
		return nil, err
	}

	var projectMarkup any
	var proposalMeta projectdomain.ProposalMeta
	if project != nil {
		proposalMeta = project.Proposal()
		projectMarkup = proposalMeta.MarkupPercent
	}
	var orgMarkup any
	branding := domain.ProposalBranding{}
	if org != nil {
		defaults := org.Defaults()
		orgMarkup = defaults.MarkupPercent
		branding = domain.ProposalBranding{
			OrgName:    org.Name,
			BrandColor: defaults.BrandColor,
			LogoURL:    defaults.LogoURL,
			FooterNote: defaults.FooterNote,
		}
	}

	percent, source := domain.ResolveMarkup(projectMarkup, orgMarkup)

	return &domain.Proposal{
		ShareID:   *version.ShareID,
		Version:   version.Version,
		Title:     proposalMeta.Title,
		Note:      proposalMeta.Note,
		Project:   payload.Project,
		Branding:  branding,
		Quote:     domain.ApplyMarkup(payload, totals, percent, source),
		Status:    version.ProposalStatus,
		Response:  version.DecodeResponse(),
		CreatedAt: version.CreatedAt,
	}, nil
}

// RespondProposal records the accept/decline response at most once. A
// terminal proposal makes later calls no-ops returning the stored
// response, including when two responses race.
func (s *Service) RespondProposal(ctx context.Context, shareID string, req domain.RespondRequest) (*domain.ProposalResponse, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != domain.ProposalAccepted && status != domain.ProposalDeclined {
		return nil, domain.ErrInvalidStatus
	}

	version, err := s.findShared(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if existing := version.DecodeResponse(); existing != nil {
		return existing, nil
	}

	response := domain.ProposalResponse{
		Status:      status,
		Name:        strings.TrimSpace(req.Name),
		Note:        strings.TrimSpace(req.Note),
		RespondedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ApplyProposalResponse(ctx, s.db, version.ID, status, datatypes.JSON(raw))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		version, err = s.findShared(ctx, shareID)
		if err != nil {
			return nil, err
		}
		if existing := version.DecodeResponse(); existing != nil {
			return existing, nil
		}
		return nil, domain.ErrNotFound
	}

	s.metrics.RecordProposalResponse(ctx, status)
	s.log.Info("proposal response recorded",
		zap.Int64("bom_version_id", version.ID),
		zap.String("status", status),
	)
	return &response, nil
}

func (s *Service) priceProject(ctx context.Context, project *projectdomain.Project) (*pricing.ProjectTotals, error) {
	var params pricing.Params
	org, err := s.orgs.FindByID(ctx, s.db, project.OrgID)
	if err != nil {
		return nil, err
	}
	if org != nil {
		params.PricingTier = org.PricingTier
		params.TaxStatus = org.TaxStatus
	}
	params.ClientMeta = project.Client()

	items, err := s.projects.ListLineItems(ctx, s.db, project.ID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.projects.ListRooms(ctx, s.db, project.ID)
	if err != nil {
		return nil, err
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
		return nil, err
	}
	products := make(map[int64]productdomain.Product, len(productRows))
	for _, row := range productRows {
		products[row.ID] = row
	}

	inputs := projectdomain.BuildLineInputs(items, roomNames, products)
	totals := pricing.ComputeProjectTotals(inputs, params)
	return &totals, nil
}

func (s *Service) loadProject(ctx context.Context, id string) (*projectdomain.Project, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	projectID, err := orgcontext.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	project, err := s.projects.FindProjectByID(ctx, s.db, int64(orgID), projectID.Int64())
	if err != nil {
		return nil, err
	}
	if project == nil || project.Status == projectdomain.StatusDeleted {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

func (s *Service) loadVersion(ctx context.Context, id string) (*domain.BOMVersion, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	versionID, err := orgcontext.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	version, err := s.repo.FindByID(ctx, s.db, int64(orgID), versionID.Int64())
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, domain.ErrNotFound
	}
	return version, nil
}

func (s *Service) findShared(ctx context.Context, shareID string) (*domain.BOMVersion, error) {
	shareID = strings.TrimSpace(shareID)
	if shareID == "" {
		return nil, domain.ErrInvalidID
	}
	version, err := s.repo.FindByShareID(ctx, s.db, shareID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, domain.ErrNotFound
	}
	return version, nil
}

func (s *Service) toResponse(v *domain.BOMVersion) (*domain.Response, error) {
	payload, err := v.DecodeSnapshot()
	if err != nil {
		return nil, err
	}
	totals, err := v.DecodeTotals()
	if err != nil {
		return nil, err
	}
	return &domain.Response{
		ID:             snowflake.ID(v.ID).String(),
		ProjectID:      snowflake.ID(v.ProjectID).String(),
		Version:        v.Version,
		ShareID:        v.ShareID,
		Snapshot:       payload,
		Totals:         totals,
		ProposalStatus: v.ProposalStatus,
		Response:       v.DecodeResponse(),
		CreatedAt:      v.CreatedAt,
	}, nil
}
