package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"trip-planner/internal/models"

	"github.com/google/uuid"
)

// Cancel transitions a proposal to CANCELED. Proposer only; the status
// compare-and-set resolves the race against an in-flight convert.
// Cascades removal of ranks and notifies prior voters.
func (ps *ProposalService) Cancel(
	ctx context.Context,
	proposalID uuid.UUID,
	requesterID uint,
) (*models.Proposal, error) {
	proposal, err := ps.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.ProposedBy != requesterID {
		return nil, fmt.Errorf("%w: only the proposer can cancel", models.ErrPermission)
	}
	if proposal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", models.ErrAlreadyTerminal, proposal.Status)
	}

	// Collect voters before the cascade removes their ranks
	voterIDs, err := ps.repo.GetProposalVoterIDs(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect voters: %w", err)
	}

	err = ps.repo.TransitionProposalStatus(ctx, proposalID,
		models.ProposalStatusActive, models.ProposalStatusCanceled, nil)
	if errors.Is(err, models.ErrConflict) {
		// Lost the race: someone converted or canceled first
		return nil, fmt.Errorf("%w: proposal %s changed concurrently", models.ErrConflict, proposalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel proposal: %w", err)
	}

	if err := ps.repo.DeleteProposalRanks(ctx, proposalID); err != nil {
		log.Printf("[Cancel] Warning: failed to cascade ranks for %s: %v", proposalID, err)
	}

	ps.notifier.NotifyAll(ctx, voterIDs, models.NotificationKindCanceled,
		fmt.Sprintf("%q was withdrawn by its proposer", proposal.Name), &proposal.ID)

	proposal.Status = models.ProposalStatusCanceled
	proposal.UpdatedAt = time.Now()

	log.Printf("[Cancel] Proposal %s canceled by user %d", proposalID, requesterID)

	return proposal, nil
}
