package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/specbook/internal/project/domain"
	"github.com/smallbiznis/specbook/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateProject(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) FindProjectByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Project, error) {
	var p domain.Project
	err := db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) ListProjects(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ProjectFilter) ([]domain.Project, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("org_id = ?", orgID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	} else {
		stmt = stmt.Where("status <> ?", domain.StatusDeleted)
	}
	if filter.AfterID > 0 {
		stmt = stmt.Where("id > ?", filter.AfterID)
	}

	stmt = option.WithOrder("id ASC").Apply(stmt)
	stmt = option.WithLimit(filter.Limit).Apply(stmt)

	var items []domain.Project
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateProject(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	if project == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]any{
			"name":          project.Name,
			"slug":          project.Slug,
			"status":        project.Status,
			"client_meta":   project.ClientMeta,
			"proposal_meta": project.ProposalMeta,
			"archived_at":   project.ArchivedAt,
			"updated_at":    project.UpdatedAt,
		}).Error
}

func (r *repo) CreateRoom(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Create(room).Error
}

func (r *repo) FindRoomByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Room, error) {
	var room domain.Room
	err := db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *repo) ListRooms(ctx context.Context, db *gorm.DB, projectID int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repo) DeleteRoom(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Room{}).Error
}

func (r *repo) DetachRoomFromLineItems(ctx context.Context, db *gorm.DB, roomID int64) error {
	return db.WithContext(ctx).
		Model(&domain.LineItem{}).
		Where("room_id = ?", roomID).
		Update("room_id", nil).Error
}

func (r *repo) CreateLineItem(ctx context.Context, db *gorm.DB, item *domain.LineItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindLineItemByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.LineItem, error) {
	var item domain.LineItem
	err := db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListLineItems(ctx context.Context, db *gorm.DB, projectID int64) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateLineItem(ctx context.Context, db *gorm.DB, item *domain.LineItem) error {
	if item == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.LineItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"room_id":    item.RoomID,
			"qty":        item.Qty,
			"unit_price": item.UnitPrice,
			"notes":      item.Notes,
			"updated_at": item.UpdatedAt,
		}).Error
}

func (r *repo) DeleteLineItem(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.LineItem{}).Error
}
