package models

import (
	"time"

	"github.com/google/uuid"
)

type InviteStatus string

const (
	InviteStatusPending    InviteStatus = "PENDING"
	InviteStatusAccepted   InviteStatus = "ACCEPTED"
	InviteStatusDeclined   InviteStatus = "DECLINED"
	InviteStatusWaitlisted InviteStatus = "WAITLISTED"
)

type InviteAction string

const (
	InviteActionAccept   InviteAction = "ACCEPT"
	InviteActionDecline  InviteAction = "DECLINE"
	InviteActionWaitlist InviteAction = "WAITLIST"
	InviteActionMaybe    InviteAction = "MAYBE"
)

// Invite is the RSVP record for one attendee on one schedule entry.
// The creator's invite is created ACCEPTED with IsCreator set and is
// not editable through Respond. WaitlistedAt orders promotion.
type Invite struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_item_user,unique" json:"item_id"`
	ItemKind     ProposalKind `gorm:"size:50;not null" json:"item_kind"`
	UserID       uint         `gorm:"not null;index:idx_item_user,unique" json:"user_id"`
	Status       InviteStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	IsCreator    bool         `gorm:"default:false" json:"is_creator"`
	RespondedAt  *time.Time   `json:"responded_at"`
	WaitlistedAt *time.Time   `json:"waitlisted_at"`
	CreatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invite) TableName() string {
	return "invites"
}

// RespondRequest is the payload for answering an invite
type RespondRequest struct {
	Action InviteAction `json:"action" binding:"required"`
}

// InviteUpdateResult reports the outcome of a response. Waitlisted is
// set when an ACCEPT was downgraded because the item was at capacity;
// PromotedUserID is set when this response freed a seat and the
// longest-waiting waitlisted invite was promoted.
type InviteUpdateResult struct {
	Invite         *Invite `json:"invite"`
	Waitlisted     bool    `json:"waitlisted"`
	PromotedUserID *uint   `json:"promoted_user_id,omitempty"`
}
