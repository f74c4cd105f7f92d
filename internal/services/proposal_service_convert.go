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

// Convert transitions an ACTIVE proposal to SCHEDULED and materializes
// a schedule entry carrying the proposal's payload, with pending
// invites for every trip member (the proposer's invite is accepted).
// Retried converts by the proposer within convertRetryWindow return the
// existing entry instead of erroring twice.
func (ps *ProposalService) Convert(
	ctx context.Context,
	proposalID uuid.UUID,
	requesterID uint,
) (*models.ScheduleEntry, error) {
	proposal, err := ps.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.ProposedBy != requesterID {
		return nil, fmt.Errorf("%w: only the proposer can convert", models.ErrPermission)
	}

	if proposal.Status == models.ProposalStatusScheduled {
		return ps.convertRetry(ctx, proposal, requesterID)
	}
	if proposal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", models.ErrAlreadyTerminal, proposal.Status)
	}

	// A schedule entry is calendar-visible; it needs a start instant
	if proposal.StartTime == nil {
		return nil, fmt.Errorf("%w: proposal has no start time", models.ErrMissingRequiredField)
	}

	entry := &models.ScheduleEntry{
		ID:               uuid.New(),
		TripID:           proposal.TripID,
		Kind:             proposal.Kind,
		CreatedBy:        requesterID,
		Title:            proposal.Name,
		Location:         proposal.Location,
		Price:            proposal.Price,
		Currency:         proposal.Currency,
		StartTime:        proposal.StartTime,
		EndTime:          proposal.EndTime,
		Capacity:         proposal.Capacity,
		Status:           models.ScheduleEntryStatusConfirmed,
		SourceProposalID: &proposal.ID,
	}

	// Status flip and entry insert commit together; a failed insert
	// must not leave a SCHEDULED proposal pointing at nothing
	err = ps.repo.ScheduleProposal(ctx, proposalID, entry, time.Now())
	if errors.Is(err, models.ErrConflict) {
		return nil, fmt.Errorf("%w: proposal %s changed concurrently", models.ErrConflict, proposalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to schedule proposal: %w", err)
	}

	if err := ps.createMemberInvites(ctx, entry, requesterID); err != nil {
		log.Printf("[Convert] Warning: failed to create invites for %s: %v", entry.ID, err)
	}

	members, _ := ps.repo.GetTripMembers(ctx, proposal.TripID)
	for _, member := range members {
		if member.UserID == requesterID {
			continue
		}
		ps.notifier.Notify(ctx, member.UserID, models.NotificationKindConverted,
			fmt.Sprintf("%q is now on the schedule", entry.Title), &entry.ID)
	}

	log.Printf("[Convert] Proposal %s converted to entry %s by user %d", proposalID, entry.ID, requesterID)

	return entry, nil
}

// convertRetry handles converts against an already-scheduled proposal.
// Same requester within the retry window gets the existing entry.
func (ps *ProposalService) convertRetry(
	ctx context.Context,
	proposal *models.Proposal,
	requesterID uint,
) (*models.ScheduleEntry, error) {
	if proposal.ScheduleEntryID == nil || proposal.ConvertedAt == nil {
		return nil, fmt.Errorf("%w: status is %s", models.ErrAlreadyTerminal, proposal.Status)
	}
	if time.Since(*proposal.ConvertedAt) > convertRetryWindow {
		return nil, fmt.Errorf("%w: status is %s", models.ErrAlreadyTerminal, proposal.Status)
	}

	entry, err := ps.repo.GetScheduleEntryByID(ctx, *proposal.ScheduleEntryID)
	if err != nil {
		return nil, err
	}

	log.Printf("[Convert] Idempotent retry for proposal %s by user %d", proposal.ID, requesterID)

	return entry, nil
}

// createMemberInvites creates one pending invite per trip member, with
// the creator's own invite implicitly accepted.
func (ps *ProposalService) createMemberInvites(
	ctx context.Context,
	entry *models.ScheduleEntry,
	creatorID uint,
) error {
	members, err := ps.repo.GetTripMembers(ctx, entry.TripID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, member := range members {
		invite := &models.Invite{
			ID:       uuid.New(),
			ItemID:   entry.ID,
			ItemKind: entry.Kind,
			UserID:   member.UserID,
			Status:   models.InviteStatusPending,
		}
		if member.UserID == creatorID {
			invite.Status = models.InviteStatusAccepted
			invite.IsCreator = true
			invite.RespondedAt = &now
		}
		if err := ps.repo.DB().WithContext(ctx).Create(invite).Error; err != nil {
			return err
		}
	}
	return nil
}
