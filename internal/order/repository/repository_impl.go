package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/specbook/internal/order/domain"
	"github.com/smallbiznis/specbook/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByShareID(ctx context.Context, db *gorm.DB, shareID string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Where("share_id = ?", shareID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListFilter) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("org_id = ?", orgID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.AfterID > 0 {
		stmt = stmt.Where("id > ?", filter.AfterID)
	}

	stmt = option.WithOrder("id ASC").Apply(stmt)
	stmt = option.WithLimit(filter.Limit).Apply(stmt)

	var items []domain.Order
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if order == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     order.Status,
			"tracking":   order.Tracking,
			"updated_at": order.UpdatedAt,
		}).Error
}

func (r *repo) AssignShareID(ctx context.Context, db *gorm.DB, id int64, shareID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND share_id IS NULL", id).
		Update("share_id", shareID)
	return res.RowsAffected, res.Error
}
