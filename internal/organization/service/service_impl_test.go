package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/specbook/internal/organization/domain"
	organizationrepository "github.com/smallbiznis/specbook/internal/organization/repository"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	"github.com/smallbiznis/specbook/internal/pricing"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupOrganizationService(t *testing.T) domain.Service {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Organization{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  organizationrepository.Provide(),
	})
}

func TestCreateOrganization(t *testing.T) {
	svc := setupOrganizationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "Acme Interiors",
		PricingTier: pricing.TierBase,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "acme-interiors" {
		t.Fatalf("expected slug acme-interiors, got %s", created.Slug)
	}

	if _, err := svc.Create(ctx, domain.CreateRequest{Name: "Acme Interiors"}); err != domain.ErrSlugTaken {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Name: "   "}); err != domain.ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc := setupOrganizationService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Acme Interiors"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	orgID, err := snowflake.ParseString(created.ID)
	if err != nil {
		t.Fatalf("parse org id: %v", err)
	}
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	tier := "plus"
	taxStatus := "vat exempt"
	updated, err := svc.UpdateSettings(ctx, domain.UpdateSettingsRequest{
		PricingTier: &tier,
		TaxStatus:   &taxStatus,
		ProposalDefaults: &domain.ProposalDefaults{
			MarkupPercent: 7.5,
			FooterNote:    "Prices valid for 30 days",
		},
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.PricingTier != "plus" || updated.TaxStatus != "vat exempt" {
		t.Fatalf("expected updated tier and tax status, got %+v", updated)
	}
	if updated.ProposalDefaults == nil || updated.ProposalDefaults.FooterNote != "Prices valid for 30 days" {
		t.Fatalf("expected stored proposal defaults, got %+v", updated.ProposalDefaults)
	}

	// The name stays when not supplied.
	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme Interiors" {
		t.Fatalf("expected unchanged name, got %s", got.Name)
	}
}

func TestGetRequiresOrganization(t *testing.T) {
	svc := setupOrganizationService(t)

	if _, err := svc.Get(context.Background()); err != domain.ErrInvalidOrganization {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}
