package models

import (
	"time"

	"github.com/google/uuid"
)

// Rank is one voter's preference signal on a proposal: an ordinal
// (1 = first choice) for ranked kinds, or ±1 for thumb-voted kinds.
// TripID and Kind are denormalized so the cross-proposal uniqueness
// sweep is a single indexed query.
type Rank struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID uuid.UUID    `gorm:"type:uuid;not null;index:idx_proposal_voter,unique" json:"proposal_id"`
	VoterID    uint         `gorm:"not null;index:idx_proposal_voter,unique" json:"voter_id"`
	TripID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"trip_id"`
	Kind       ProposalKind `gorm:"size:50;not null;index" json:"kind"`
	Value      int          `gorm:"not null" json:"value"`
	CreatedAt  time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Rank) TableName() string {
	return "ranks"
}

// SubmitRankRequest is the payload for casting or toggling a rank
type SubmitRankRequest struct {
	Value int `json:"value" binding:"required"`
}

// RankView attributes a rank to a voter identity for display
type RankView struct {
	VoterID   uint      `json:"voter_id"`
	VoterName string    `json:"voter_name"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThumbTally aggregates ±1 votes for thumb-voted kinds
type ThumbTally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

// RankSet is the full updated set of ranks on a proposal, returned
// after every submission so the caller can redraw without refetching.
type RankSet struct {
	ProposalID     uuid.UUID   `json:"proposal_id"`
	Ranks          []RankView  `json:"ranks"`
	AverageRanking *float64    `json:"average_ranking,omitempty"`
	Thumbs         *ThumbTally `json:"thumbs,omitempty"`
	// Toggled is true when the submission cleared the caller's
	// previous identical rank instead of setting a new one.
	Toggled bool `json:"toggled"`
}
