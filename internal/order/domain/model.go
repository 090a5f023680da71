package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Order states. Payment success moves pending to confirmed; fulfilment
// walks confirmed through delivered; cancellation is only possible before
// processing starts.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	OrgID        int64          `json:"organization_id" gorm:"column:org_id;not null;index"`
	ProjectID    int64          `json:"project_id" gorm:"not null;index"`
	BOMVersionID int64          `json:"bom_version_id" gorm:"not null;index"`
	Number       string         `json:"number" gorm:"type:text;not null;uniqueIndex"`
	Status       string         `json:"status" gorm:"type:text;not null;default:pending"`
	Currency     string         `json:"currency" gorm:"type:text"`
	Subtotal     float64        `json:"subtotal" gorm:"not null;default:0"`
	Shipping     float64        `json:"shipping" gorm:"not null;default:0"`
	Tax          float64        `json:"tax" gorm:"not null;default:0"`
	Total        float64        `json:"total" gorm:"not null;default:0"`
	ShareID      *string        `json:"share_id,omitempty" gorm:"type:text;uniqueIndex"`
	Tracking     datatypes.JSON `json:"tracking,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// TrackingEvent is one append-only entry of an order's tracking history.
type TrackingEvent struct {
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
	Carrier        string    `json:"carrier,omitempty"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	At             time.Time `json:"at"`
}

func (o *Order) TrackingEvents() []TrackingEvent {
	if len(o.Tracking) == 0 {
		return nil
	}
	var events []TrackingEvent
	if err := json.Unmarshal(o.Tracking, &events); err != nil {
		return nil
	}
	return events
}

// AppendTracking adds one event to the order's tracking history.
func (o *Order) AppendTracking(event TrackingEvent) error {
	events := append(o.TrackingEvents(), event)
	raw, err := json.Marshal(events)
	if err != nil {
		return err
	}
	o.Tracking = datatypes.JSON(raw)
	return nil
}
