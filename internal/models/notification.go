package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationKindCanceled       NotificationKind = "PROPOSAL_CANCELED"
	NotificationKindConverted      NotificationKind = "PROPOSAL_CONVERTED"
	NotificationKindPromoted       NotificationKind = "WAITLIST_PROMOTED"
	NotificationKindDeadlinePassed NotificationKind = "DEADLINE_PASSED"
)

// Notification is a fire-and-forget notice persisted for later
// delivery. Writing one must never fail the transition that caused it.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"size:50;not null" json:"kind"`
	Message   string           `gorm:"size:500" json:"message"`
	ItemID    *uuid.UUID       `gorm:"type:uuid" json:"item_id,omitempty"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
