package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	organizationdomain "github.com/smallbiznis/specbook/internal/organization/domain"
	organizationrepository "github.com/smallbiznis/specbook/internal/organization/repository"
	"github.com/smallbiznis/specbook/internal/orgcontext"
	productdomain "github.com/smallbiznis/specbook/internal/product/domain"
	productrepository "github.com/smallbiznis/specbook/internal/product/repository"
	"github.com/smallbiznis/specbook/internal/project/domain"
	projectrepository "github.com/smallbiznis/specbook/internal/project/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type env struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	org     organizationdomain.Organization
	product productdomain.Product
}

func setupProjectService(t *testing.T) *env {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&organizationdomain.Organization{},
		&productdomain.Product{},
		&domain.Project{},
		&domain.Room{},
		&domain.LineItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	e := &env{db: db, node: node}
	e.svc = New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     projectrepository.Provide(),
		Products: productrepository.Provide(),
		Orgs:     organizationrepository.Provide(),
	})

	e.org = organizationdomain.Organization{
		ID:          node.Generate().Int64(),
		Name:        "Main",
		Slug:        "main",
		PricingTier: "base",
	}
	if err := db.Create(&e.org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}

	e.product = productdomain.Product{
		ID:               node.Generate().Int64(),
		SKU:              "TILE-001",
		Name:             "Porcelain Tile",
		Currency:         "NGN",
		UnitCost:         1000,
		MSRP:             2000,
		TierBaseDiscount: 0.1,
		VolumeBreaks:     datatypes.JSON(`[{"minQty":10,"discount":0.05}]`),
		Active:           true,
	}
	if err := db.Create(&e.product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return e
}

func (e *env) ctx() context.Context {
	return orgcontext.WithOrgID(context.Background(), snowflake.ID(e.org.ID))
}

func (e *env) productID() string {
	return snowflake.ID(e.product.ID).String()
}

func TestProjectLifecycle(t *testing.T) {
	e := setupProjectService(t)
	ctx := e.ctx()

	created, err := e.svc.Create(ctx, domain.CreateRequest{Name: "Lekki Villa"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "lekki-villa" {
		t.Fatalf("expected slug lekki-villa, got %s", created.Slug)
	}
	if created.Status != domain.StatusActive {
		t.Fatalf("expected active, got %s", created.Status)
	}

	archived, err := e.svc.Archive(ctx, created.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != domain.StatusArchived || archived.ArchivedAt == nil {
		t.Fatalf("expected archived with timestamp, got %+v", archived)
	}

	// Archived projects are read-only.
	name := "Renamed"
	if _, err := e.svc.Update(ctx, created.ID, domain.UpdateRequest{Name: &name}); err != domain.ErrProjectArchived {
		t.Fatalf("expected ErrProjectArchived on update, got %v", err)
	}
	if _, err := e.svc.AddLineItem(ctx, created.ID, domain.LineItemRequest{ProductID: e.productID(), Qty: 1}); err != domain.ErrProjectArchived {
		t.Fatalf("expected ErrProjectArchived on add line item, got %v", err)
	}

	// Archiving twice is a no-op.
	again, err := e.svc.Archive(ctx, created.ID)
	if err != nil {
		t.Fatalf("archive again: %v", err)
	}
	if again.Status != domain.StatusArchived || again.ArchivedAt == nil {
		t.Fatalf("expected archive to stay archived, got %+v", again)
	}
	if again.ArchivedAt.Unix() != archived.ArchivedAt.Unix() {
		t.Fatalf("expected stable archive timestamp")
	}

	if err := e.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.svc.Get(ctx, created.ID); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestProjectListFiltersByStatus(t *testing.T) {
	e := setupProjectService(t)
	ctx := e.ctx()

	active, err := e.svc.Create(ctx, domain.CreateRequest{Name: "Active One"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := e.svc.Create(ctx, domain.CreateRequest{Name: "To Archive"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.svc.Archive(ctx, other.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	list, err := e.svc.List(ctx, domain.ListRequest{Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != active.ID {
		t.Fatalf("expected only the active project, got %+v", list.Items)
	}
}

func TestAddLineItemValidation(t *testing.T) {
	e := setupProjectService(t)
	ctx := e.ctx()

	project, err := e.svc.Create(ctx, domain.CreateRequest{Name: "Validation"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.svc.AddLineItem(ctx, project.ID, domain.LineItemRequest{ProductID: e.productID(), Qty: 0}); err != domain.ErrInvalidQty {
		t.Fatalf("expected ErrInvalidQty, got %v", err)
	}

	unknown := e.node.Generate().Int64()
	if _, err := e.svc.AddLineItem(ctx, project.ID, domain.LineItemRequest{
		ProductID: snowflake.ID(unknown).String(),
		Qty:       1,
	}); err != domain.ErrProductNotFound {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestRoomsAndLineItems(t *testing.T) {
	e := setupProjectService(t)
	ctx := e.ctx()

	project, err := e.svc.Create(ctx, domain.CreateRequest{Name: "Rooms"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	room, err := e.svc.AddRoom(ctx, project.ID, domain.RoomRequest{Name: "Kitchen"})
	if err != nil {
		t.Fatalf("add room: %v", err)
	}

	item, err := e.svc.AddLineItem(ctx, project.ID, domain.LineItemRequest{
		ProductID: e.productID(),
		RoomID:    room.ID,
		Qty:       10,
	})
	if err != nil {
		t.Fatalf("add line item: %v", err)
	}
	if item.RoomName != "Kitchen" {
		t.Fatalf("expected room name Kitchen, got %q", item.RoomName)
	}
	if item.Pricing.EffectiveUnitPrice != 1700 {
		t.Fatalf("expected computed unit price 1700, got %v", item.Pricing.EffectiveUnitPrice)
	}

	// Deleting the room detaches its line items instead of deleting them.
	if err := e.svc.DeleteRoom(ctx, project.ID, room.ID); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	items, err := e.svc.ListLineItems(ctx, project.ID)
	if err != nil {
		t.Fatalf("list line items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if items[0].RoomID != "" {
		t.Fatalf("expected detached line item, got room %q", items[0].RoomID)
	}
}

func TestLineItemOverrideAndClear(t *testing.T) {
	e := setupProjectService(t)
	ctx := e.ctx()

	project, err := e.svc.Create(ctx, domain.CreateRequest{Name: "Overrides"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := e.svc.AddLineItem(ctx, project.ID, domain.LineItemRequest{
		ProductID: e.productID(),
		Qty:       10,
		UnitPrice: 2500,
	})
	if err != nil {
		t.Fatalf("add line item: %v", err)
	}
	// Overrides suppress all discounts.
	if !item.Pricing.Override || item.Pricing.EffectiveUnitPrice != 2500 {
		t.Fatalf("expected override at 2500, got %+v", item.Pricing)
	}
	if item.Pricing.DiscountRate != 0 {
		t.Fatalf("expected no discount under override, got %v", item.Pricing.DiscountRate)
	}

	cleared, err := e.svc.UpdateLineItem(ctx, project.ID, item.ID, domain.UpdateLineItemRequest{ClearUnitPrice: true})
	if err != nil {
		t.Fatalf("clear override: %v", err)
	}
	if cleared.Pricing.Override {
		t.Fatal("expected computed pricing after clear")
	}
	if cleared.Pricing.EffectiveUnitPrice != 1700 {
		t.Fatalf("expected computed unit price 1700, got %v", cleared.Pricing.EffectiveUnitPrice)
	}
}

func TestProjectTotals(t *testing.T) {
	e := setupProjectService(t)
	ctx := e.ctx()

	project, err := e.svc.Create(ctx, domain.CreateRequest{Name: "Totals"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.svc.AddLineItem(ctx, project.ID, domain.LineItemRequest{
		ProductID: e.productID(),
		Qty:       10,
	}); err != nil {
		t.Fatalf("add line item: %v", err)
	}

	totals, err := e.svc.Totals(ctx, project.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Subtotal != 17000 {
		t.Fatalf("expected subtotal 17000, got %v", totals.Subtotal)
	}
	if totals.ListSubtotal != 20000 {
		t.Fatalf("expected list subtotal 20000, got %v", totals.ListSubtotal)
	}
	if totals.Margin != 7000 {
		t.Fatalf("expected margin 7000, got %v", totals.Margin)
	}
	// No client metadata and no supplier rates: nothing to estimate.
	if totals.Shipping != 0 || totals.Tax != 0 {
		t.Fatalf("expected zero shipping/tax, got %v / %v", totals.Shipping, totals.Tax)
	}
	if totals.Total != 17000 {
		t.Fatalf("expected total 17000, got %v", totals.Total)
	}
	if totals.Currency == nil || *totals.Currency != "NGN" {
		t.Fatalf("expected NGN currency, got %v", totals.Currency)
	}
}
