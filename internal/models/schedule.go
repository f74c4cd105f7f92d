package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ScheduleEntryStatus string

const (
	ScheduleEntryStatusConfirmed ScheduleEntryStatus = "CONFIRMED"
	ScheduleEntryStatusCanceled  ScheduleEntryStatus = "CANCELED"
)

// ScheduleEntry is a confirmed, calendar-visible item. Produced either
// by a direct save or by converting a proposal (SourceProposalID set).
type ScheduleEntry struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	TripID           uuid.UUID           `gorm:"type:uuid;not null;index" json:"trip_id"`
	Kind             ProposalKind        `gorm:"size:50;not null" json:"kind"`
	CreatedBy        uint                `gorm:"not null;index" json:"created_by"`
	Title            string              `gorm:"not null;size:255" json:"title"`
	Location         *string             `gorm:"size:255" json:"location"`
	Price            *decimal.Decimal    `gorm:"type:decimal(12,2)" json:"price"`
	Currency         string              `gorm:"size:3;default:USD" json:"currency"`
	StartTime        *time.Time          `gorm:"index" json:"start_time"`
	EndTime          *time.Time          `json:"end_time"`
	Capacity         *int                `json:"capacity"`
	Status           ScheduleEntryStatus `gorm:"size:50;not null;default:CONFIRMED;index" json:"status"`
	SourceProposalID *uuid.UUID          `gorm:"type:uuid;uniqueIndex" json:"source_proposal_id,omitempty"`
	CreatedAt        time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ScheduleEntry) TableName() string {
	return "schedule_entries"
}

// CreateScheduleEntryRequest is the payload for a direct (non-proposal)
// schedule save.
type CreateScheduleEntryRequest struct {
	Kind      ProposalKind     `json:"kind" binding:"required"`
	Title     string           `json:"title" binding:"required,max=255"`
	Location  *string          `json:"location"`
	Price     *decimal.Decimal `json:"price"`
	Currency  string           `json:"currency"`
	StartTime *time.Time       `json:"start_time" binding:"required"`
	EndTime   *time.Time       `json:"end_time"`
	Capacity  *int             `json:"capacity"`
}

// ConflictDetail describes one overlapping entry for the viewer.
// Derived per request, never persisted.
type ConflictDetail struct {
	WithID    uuid.UUID `json:"with_id"`
	WithTitle string    `json:"with_title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Candidate bool      `json:"candidate"`
}

// ScheduleEntryView is a schedule entry plus the viewer's invite and
// conflict annotations.
type ScheduleEntryView struct {
	Entry     *ScheduleEntry   `json:"entry"`
	MyInvite  *Invite          `json:"my_invite,omitempty"`
	Attendees []Invite         `json:"attendees"`
	Conflicts []ConflictDetail `json:"conflicts,omitempty"`
}
