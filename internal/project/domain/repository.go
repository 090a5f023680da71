package domain

import (
	"context"

	"gorm.io/gorm"
)

type ProjectFilter struct {
	Status  string
	AfterID int64
	Limit   int
}

type Repository interface {
	CreateProject(ctx context.Context, db *gorm.DB, project *Project) error
	FindProjectByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Project, error)
	ListProjects(ctx context.Context, db *gorm.DB, orgID int64, filter ProjectFilter) ([]Project, error)
	UpdateProject(ctx context.Context, db *gorm.DB, project *Project) error

	CreateRoom(ctx context.Context, db *gorm.DB, room *Room) error
	FindRoomByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Room, error)
	ListRooms(ctx context.Context, db *gorm.DB, projectID int64) ([]Room, error)
	DeleteRoom(ctx context.Context, db *gorm.DB, id int64) error
	DetachRoomFromLineItems(ctx context.Context, db *gorm.DB, roomID int64) error

	CreateLineItem(ctx context.Context, db *gorm.DB, item *LineItem) error
	FindLineItemByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*LineItem, error)
	ListLineItems(ctx context.Context, db *gorm.DB, projectID int64) ([]LineItem, error)
	UpdateLineItem(ctx context.Context, db *gorm.DB, item *LineItem) error
	DeleteLineItem(ctx context.Context, db *gorm.DB, id int64) error
}
