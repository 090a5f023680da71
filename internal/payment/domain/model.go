package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Payment states. Terminal states (success, failed) are applied at most
// once; retried webhooks for a terminal payment are no-ops.
const (
	StatusInitialized = "initialized"
	StatusPending     = "pending"
	StatusSuccess     = "success"
	StatusFailed      = "failed"
)

type Payment struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	OrgID            int64          `json:"organization_id" gorm:"column:org_id;index"`
	OrderID          int64          `json:"order_id" gorm:"index"`
	Reference        string         `json:"reference" gorm:"type:text;uniqueIndex"`
	Provider         string         `json:"provider" gorm:"type:text"`
	Status           string         `json:"status" gorm:"type:text"`
	Amount           float64        `json:"amount"`
	Currency         string         `json:"currency" gorm:"type:text"`
	AuthorizationURL string         `json:"authorization_url,omitempty" gorm:"type:text"`
	GatewayMeta      datatypes.JSON `json:"gateway_meta,omitempty" gorm:"type:jsonb"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) Terminal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}
