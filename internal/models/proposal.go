package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProposalKind string

const (
	ProposalKindHotel      ProposalKind = "HOTEL"
	ProposalKindFlight     ProposalKind = "FLIGHT"
	ProposalKindRestaurant ProposalKind = "RESTAURANT"
	ProposalKindActivity   ProposalKind = "ACTIVITY"
)

type ProposalStatus string

const (
	ProposalStatusActive    ProposalStatus = "ACTIVE"
	ProposalStatusScheduled ProposalStatus = "SCHEDULED"
	ProposalStatusCanceled  ProposalStatus = "CANCELED"
)

// IsTerminal reports whether no further mutation is accepted.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusScheduled || s == ProposalStatusCanceled
}

// UsesThumbVotes reports whether the kind aggregates ±1 thumb votes
// instead of ordinal ranks. Restaurants are the only thumb-voted kind.
func (k ProposalKind) UsesThumbVotes() bool {
	return k == ProposalKindRestaurant
}

// Proposal represents a candidate option awaiting a group decision.
// Kind-specific payload fields are nullable; Validate on the request
// enforces which ones are required per kind.
type Proposal struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TripID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"trip_id"`
	Kind           ProposalKind     `gorm:"size:50;not null;index" json:"kind"`
	ProposedBy     uint             `gorm:"not null;index" json:"proposed_by"`
	Status         ProposalStatus   `gorm:"size:50;not null;default:ACTIVE;index" json:"status"`
	VotingDeadline *time.Time       `json:"voting_deadline"`
	Name           string           `gorm:"not null;size:255" json:"name"`
	Location       *string          `gorm:"size:255" json:"location"`
	Price          *decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Currency       string           `gorm:"size:3;default:USD" json:"currency"`
	StartTime      *time.Time       `json:"start_time"`
	EndTime        *time.Time       `json:"end_time"`

	// Flight-only fields
	DepartureAirport *string `gorm:"size:8" json:"departure_airport,omitempty"`
	ArrivalAirport   *string `gorm:"size:8" json:"arrival_airport,omitempty"`
	FlightNumber     *string `gorm:"size:16" json:"flight_number,omitempty"`

	// Activity/restaurant capacity cap carried into the schedule entry
	Capacity *int `json:"capacity,omitempty"`

	// Set when the proposal converts, for idempotent retries
	ScheduleEntryID *uuid.UUID `gorm:"type:uuid;index" json:"schedule_entry_id,omitempty"`
	ConvertedAt     *time.Time `json:"converted_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// CreateProposalRequest is the payload for proposing a candidate item
type CreateProposalRequest struct {
	Kind             ProposalKind     `json:"kind" binding:"required"`
	Name             string           `json:"name" binding:"required,max=255"`
	Location         *string          `json:"location"`
	Price            *decimal.Decimal `json:"price"`
	Currency         string           `json:"currency"`
	StartTime        *time.Time       `json:"start_time"`
	EndTime          *time.Time       `json:"end_time"`
	// Free-form clock strings ("2:30 PM") accepted as an alternative
	// to the instant fields; normalized against the trip dates
	StartTimeText    string           `json:"start_time_text"`
	EndTimeText      string           `json:"end_time_text"`
	DepartureAirport *string          `json:"departure_airport"`
	ArrivalAirport   *string          `json:"arrival_airport"`
	FlightNumber     *string          `json:"flight_number"`
	Capacity         *int             `json:"capacity"`
	VotingDeadline   *time.Time       `json:"voting_deadline"`
}

// Validate enforces kind-specific required fields before the proposal
// enters the shared lifecycle machine.
func (r *CreateProposalRequest) Validate() error {
	switch r.Kind {
	case ProposalKindHotel:
		if r.Location == nil || *r.Location == "" {
			return fmt.Errorf("%w: hotel proposal requires a location", ErrValidation)
		}
	case ProposalKindFlight:
		if r.DepartureAirport == nil || r.ArrivalAirport == nil {
			return fmt.Errorf("%w: flight proposal requires departure and arrival airports", ErrValidation)
		}
		if r.StartTime == nil {
			return fmt.Errorf("%w: flight proposal requires a departure time", ErrValidation)
		}
	case ProposalKindRestaurant:
		if r.Location == nil || *r.Location == "" {
			return fmt.Errorf("%w: restaurant proposal requires a location", ErrValidation)
		}
	case ProposalKindActivity:
		// name only
	default:
		return fmt.Errorf("%w: unknown proposal kind %q", ErrValidation, r.Kind)
	}
	if r.Capacity != nil && *r.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	if r.StartTime != nil && r.EndTime != nil && !r.EndTime.After(*r.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	return nil
}

// ProposalView is the read projection returned to the presentation
// layer: the proposal plus its aggregated votes and conflict warnings.
type ProposalView struct {
	Proposal       *Proposal        `json:"proposal"`
	Ranks          []RankView       `json:"ranks"`
	AverageRanking *float64         `json:"average_ranking,omitempty"`
	Thumbs         *ThumbTally      `json:"thumbs,omitempty"`
	Conflicts      []ConflictDetail `json:"conflicts,omitempty"`
}
