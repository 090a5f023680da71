package domain

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, version *BOMVersion) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*BOMVersion, error)
	FindByShareID(ctx context.Context, db *gorm.DB, shareID string) (*BOMVersion, error)
	ListByProject(ctx context.Context, db *gorm.DB, projectID int64) ([]BOMVersion, error)
	MaxVersion(ctx context.Context, db *gorm.DB, projectID int64) (int, error)

	// AssignShareID sets the share id only when none is set yet; the
	// returned count is 0 when another caller won the race.
	AssignShareID(ctx context.Context, db *gorm.DB, id int64, shareID string) (int64, error)

	// ApplyProposalResponse records the one-time response only while the
	// proposal is still open; the returned count is 0 when it was already
	// terminal.
	ApplyProposalResponse(ctx context.Context, db *gorm.DB, id int64, status string, response datatypes.JSON) (int64, error)
}
