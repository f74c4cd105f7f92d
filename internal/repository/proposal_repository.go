package repository

import (
	"context"
	"errors"
	"time"

	"trip-planner/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProposal creates a new proposal
func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetProposalByID retrieves a proposal by ID
func (r *Repository) GetProposalByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("id = ?", proposalID).First(&proposal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetTripProposals retrieves proposals for a trip, optionally filtered
// by kind, newest first
func (r *Repository) GetTripProposals(ctx context.Context, tripID uuid.UUID, kind *models.ProposalKind) ([]*models.Proposal, error) {
	q := r.db.WithContext(ctx).Where("trip_id = ?", tripID)
	if kind != nil {
		q = q.Where("kind = ?", *kind)
	}
	var proposals []*models.Proposal
	err := q.Order("created_at DESC").Find(&proposals).Error
	return proposals, err
}

// TransitionProposalStatus performs a compare-and-set status update.
// Returns models.ErrConflict when the row was not in the expected
// status, so racing cancel/convert calls resolve server-side.
func (r *Repository) TransitionProposalStatus(
	ctx context.Context,
	proposalID uuid.UUID,
	from, to models.ProposalStatus,
	extra map[string]interface{},
) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalID, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConflict
	}
	return nil
}

// ScheduleProposal transitions an ACTIVE proposal to SCHEDULED and
// creates its schedule entry in one transaction, so a failed insert
// leaves the proposal untouched. Returns models.ErrConflict when the
// proposal was not ACTIVE.
func (r *Repository) ScheduleProposal(
	ctx context.Context,
	proposalID uuid.UUID,
	entry *models.ScheduleEntry,
	at time.Time,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposalID, models.ProposalStatusActive).
			Updates(map[string]interface{}{
				"status":            models.ProposalStatusScheduled,
				"updated_at":        at,
				"schedule_entry_id": entry.ID,
				"converted_at":      at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrConflict
		}
		return tx.Create(entry).Error
	})
}

// DeleteProposalRanks removes all ranks for a proposal (cancel cascade)
func (r *Repository) DeleteProposalRanks(ctx context.Context, proposalID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Delete(&models.Rank{}).Error
}

// GetProposalVoterIDs returns the distinct voter ids holding ranks on
// a proposal, for cancellation notices
func (r *Repository) GetProposalVoterIDs(ctx context.Context, proposalID uuid.UUID) ([]uint, error) {
	var voterIDs []uint
	err := r.db.WithContext(ctx).Model(&models.Rank{}).
		Where("proposal_id = ?", proposalID).
		Distinct().
		Pluck("voter_id", &voterIDs).Error
	return voterIDs, err
}

// GetProposalsPastDeadline returns active proposals whose voting
// deadline has passed, for the deadline watcher
func (r *Repository) GetProposalsPastDeadline(ctx context.Context, now time.Time, limit int) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ? AND voting_deadline IS NOT NULL AND voting_deadline < ?",
			models.ProposalStatusActive, now).
		Order("voting_deadline ASC").
		Limit(limit).
		Find(&proposals).Error
	return proposals, err
}
