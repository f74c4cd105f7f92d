package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"trip-planner/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VotingService applies rank submissions with toggle semantics and the
// per-voter cross-proposal uniqueness sweep, and aggregates results.
type VotingService struct {
	db *gorm.DB
}

func NewVotingService(db *gorm.DB) *VotingService {
	return &VotingService{db: db}
}

// SubmitRank casts, moves, or toggles off a voter's rank on a proposal
// and returns the full updated rank set. The toggle, the uniqueness
// sweep, and the upsert run in one transaction.
func (vs *VotingService) SubmitRank(
	ctx context.Context,
	proposalID uuid.UUID,
	voterID uint,
	value int,
) (*models.RankSet, error) {
	var proposal models.Proposal
	err := vs.db.WithContext(ctx).Where("id = ?", proposalID).First(&proposal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: proposal %s", models.ErrNotFound, proposalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status != models.ProposalStatusActive {
		return nil, fmt.Errorf("%w: status is %s", models.ErrProposalNotActive, proposal.Status)
	}
	if proposal.VotingDeadline != nil && time.Now().After(*proposal.VotingDeadline) {
		return nil, fmt.Errorf("%w: voting deadline has passed", models.ErrProposalNotActive)
	}

	if err := ValidateRankValue(proposal.Kind, value); err != nil {
		return nil, err
	}

	toggled := false
	err = vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Rank
		findErr := tx.Where("proposal_id = ? AND voter_id = ?", proposalID, voterID).
			First(&existing).Error

		if findErr == nil && existing.Value == value {
			// Re-selecting the held rank clears it
			toggled = true
			return tx.Delete(&existing).Error
		}
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// A given value may be held by at most one active proposal of
		// this kind in this trip, per voter. Vacate the previous holder.
		if err := tx.
			Where("trip_id = ? AND kind = ? AND voter_id = ? AND value = ? AND proposal_id <> ?",
				proposal.TripID, proposal.Kind, voterID, value, proposalID).
			Where("proposal_id IN (?)",
				tx.Model(&models.Proposal{}).Select("id").
					Where("status = ?", models.ProposalStatusActive)).
			Delete(&models.Rank{}).Error; err != nil {
			return err
		}

		if findErr == nil {
			existing.Value = value
			existing.UpdatedAt = time.Now()
			return tx.Save(&existing).Error
		}

		rank := &models.Rank{
			ID:         uuid.New(),
			ProposalID: proposalID,
			VoterID:    voterID,
			TripID:     proposal.TripID,
			Kind:       proposal.Kind,
			Value:      value,
		}
		return tx.Create(rank).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit rank: %w", err)
	}

	log.Printf("[SubmitRank] Voter %d value %d on proposal %s (toggled=%v)",
		voterID, value, proposalID, toggled)

	set, err := vs.GetRankSet(ctx, proposalID, proposal.Kind)
	if err != nil {
		return nil, err
	}
	set.Toggled = toggled
	return set, nil
}

// GetRanks loads the current ranks on a proposal, oldest update first.
func (vs *VotingService) GetRanks(ctx context.Context, proposalID uuid.UUID) ([]models.Rank, error) {
	var ranks []models.Rank
	err := vs.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("updated_at ASC").
		Find(&ranks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ranks: %w", err)
	}
	return ranks, nil
}

// GetRankSet returns all current ranks on a proposal attributed to
// voter identities, plus the kind-appropriate aggregate.
func (vs *VotingService) GetRankSet(
	ctx context.Context,
	proposalID uuid.UUID,
	kind models.ProposalKind,
) (*models.RankSet, error) {
	ranks, err := vs.GetRanks(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return vs.BuildRankSet(ctx, proposalID, kind, ranks)
}

// BuildRankSet attributes a rank slice to voter identities and computes
// the kind-appropriate aggregate. The slice may come from storage or
// from a cached view.
func (vs *VotingService) BuildRankSet(
	ctx context.Context,
	proposalID uuid.UUID,
	kind models.ProposalKind,
	ranks []models.Rank,
) (*models.RankSet, error) {
	names := make(map[uint]string, len(ranks))
	if len(ranks) > 0 {
		voterIDs := make([]uint, 0, len(ranks))
		for _, rank := range ranks {
			voterIDs = append(voterIDs, rank.VoterID)
		}
		var voters []models.User
		if err := vs.db.WithContext(ctx).Select("id, username").
			Where("id IN ?", voterIDs).Find(&voters).Error; err != nil {
			return nil, fmt.Errorf("failed to load voters: %w", err)
		}
		for _, voter := range voters {
			names[voter.ID] = voter.Username
		}
	}

	views := make([]models.RankView, 0, len(ranks))
	for _, rank := range ranks {
		views = append(views, models.RankView{
			VoterID:   rank.VoterID,
			VoterName: names[rank.VoterID],
			Value:     rank.Value,
			UpdatedAt: rank.UpdatedAt,
		})
	}

	set := &models.RankSet{
		ProposalID: proposalID,
		Ranks:      views,
	}
	if kind.UsesThumbVotes() {
		set.Thumbs = TallyThumbs(ranks)
	} else {
		set.AverageRanking = AverageRanking(ranks)
	}
	return set, nil
}

// AverageRanking returns the arithmetic mean of the rank values, or
// nil when no votes exist.
func AverageRanking(ranks []models.Rank) *float64 {
	if len(ranks) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ranks {
		sum += r.Value
	}
	avg := float64(sum) / float64(len(ranks))
	return &avg
}

// TallyThumbs counts ±1 votes for thumb-voted kinds.
func TallyThumbs(ranks []models.Rank) *models.ThumbTally {
	tally := &models.ThumbTally{}
	for _, r := range ranks {
		if r.Value > 0 {
			tally.Up++
		} else {
			tally.Down++
		}
	}
	return tally
}

// ValidateRankValue checks the value range for the proposal kind:
// positive integers for ranked kinds, ±1 for thumb-voted kinds.
func ValidateRankValue(kind models.ProposalKind, value int) error {
	if kind.UsesThumbVotes() {
		if value != 1 && value != -1 {
			return fmt.Errorf("%w: thumb vote must be 1 or -1, got %d", models.ErrInvalidRankValue, value)
		}
		return nil
	}
	if value < 1 {
		return fmt.Errorf("%w: rank must be a positive integer, got %d", models.ErrInvalidRankValue, value)
	}
	return nil
}

// ApplyRankLocally computes the rank set that SubmitRank would produce,
// over an in-memory slice. The optimistic coordinator uses it to update
// cached views before the durable call returns.
func ApplyRankLocally(ranks []models.Rank, proposalID uuid.UUID, voterID uint, value int) []models.Rank {
	out := make([]models.Rank, 0, len(ranks)+1)
	replaced := false
	for _, r := range ranks {
		switch {
		case r.ProposalID == proposalID && r.VoterID == voterID && r.Value == value:
			// toggle off
			replaced = true
		case r.ProposalID == proposalID && r.VoterID == voterID:
			r.Value = value
			r.UpdatedAt = time.Now()
			out = append(out, r)
			replaced = true
		case r.ProposalID != proposalID && r.VoterID == voterID && r.Value == value:
			// vacated by the uniqueness sweep
		default:
			out = append(out, r)
		}
	}
	if !replaced {
		out = append(out, models.Rank{
			ID:         uuid.New(),
			ProposalID: proposalID,
			VoterID:    voterID,
			Value:      value,
			UpdatedAt:  time.Now(),
		})
	}
	return out
}
