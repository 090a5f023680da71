package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	Status  string
	AfterID int64
	Limit   int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Order, error)
	FindByShareID(ctx context.Context, db *gorm.DB, shareID string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListFilter) ([]Order, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error

	// AssignShareID sets the share id only when none is set yet.
	AssignShareID(ctx context.Context, db *gorm.DB, id int64, shareID string) (int64, error)
}
