package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/specbook/internal/product/domain"
	"github.com/smallbiznis/specbook/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Product
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if q := strings.TrimSpace(filter.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		stmt = stmt.Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.AfterID > 0 {
		stmt = stmt.Where("id > ?", filter.AfterID)
	}

	stmt = option.WithOrder("id ASC").Apply(stmt)
	stmt = option.WithLimit(filter.Limit).Apply(stmt)

	var items []domain.Product
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":               product.Name,
			"description":        product.Description,
			"currency":           product.Currency,
			"unit_cost":          product.UnitCost,
			"msrp":               product.MSRP,
			"tier_base_discount": product.TierBaseDiscount,
			"tier_plus_discount": product.TierPlusDiscount,
			"volume_breaks":      product.VolumeBreaks,
			"pricing":            product.Pricing,
			"supplier":           product.Supplier,
			"active":             product.Active,
			"updated_at":         product.UpdatedAt,
		}).Error
}
