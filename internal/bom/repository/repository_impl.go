package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/specbook/internal/bom/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, version *domain.BOMVersion) error {
	return db.WithContext(ctx).Create(version).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.BOMVersion, error) {
	var v domain.BOMVersion
	err := db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repo) FindByShareID(ctx context.Context, db *gorm.DB, shareID string) (*domain.BOMVersion, error) {
	var v domain.BOMVersion
	err := db.WithContext(ctx).Where("share_id = ?", shareID).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repo) ListByProject(ctx context.Context, db *gorm.DB, projectID int64) ([]domain.BOMVersion, error) {
	var items []domain.BOMVersion
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MaxVersion(ctx context.Context, db *gorm.DB, projectID int64) (int, error) {
	var max int
	err := db.WithContext(ctx).
		Model(&domain.BOMVersion{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max, err
}

func (r *repo) AssignShareID(ctx context.Context, db *gorm.DB, id int64, shareID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.BOMVersion{}).
		Where("id = ? AND share_id IS NULL", id).
		Update("share_id", shareID)
	return res.RowsAffected, res.Error
}

func (r *repo) ApplyProposalResponse(ctx context.Context, db *gorm.DB, id int64, status string, response datatypes.JSON) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.BOMVersion{}).
		Where("id = ? AND proposal_status IS NULL", id).
		Updates(map[string]any{
			"proposal_status":   status,
			"proposal_response": response,
		})
	return res.RowsAffected, res.Error
}
