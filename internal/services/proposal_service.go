package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"trip-planner/internal/models"
	"trip-planner/internal/repository"
	"trip-planner/internal/timeutil"

	"github.com/google/uuid"
)

// idempotency window for convert retries by the same requester
const convertRetryWindow = 5 * time.Minute

// ProposalService orchestrates the proposal lifecycle: creation,
// cancellation, and conversion into a schedule entry. Cancel and
// convert are mutually exclusive terminal transitions resolved by a
// compare-and-set on status at the persistence boundary.
type ProposalService struct {
	repo     *repository.Repository
	voting   *VotingService
	notifier *NotificationService
}

func NewProposalService(
	repo *repository.Repository,
	voting *VotingService,
	notifier *NotificationService,
) *ProposalService {
	return &ProposalService{
		repo:     repo,
		voting:   voting,
		notifier: notifier,
	}
}

// Propose creates a proposal in ACTIVE status after validating the
// kind-specific payload and the deadline.
func (ps *ProposalService) Propose(
	ctx context.Context,
	tripID uuid.UUID,
	proposerID uint,
	req *models.CreateProposalRequest,
) (*models.Proposal, error) {
	isMember, err := ps.repo.IsTripMember(ctx, tripID, proposerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, fmt.Errorf("%w: user %d is not a member of trip %s", models.ErrPermission, proposerID, tripID)
	}

	if err := ps.resolveTimeText(ctx, tripID, req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.VotingDeadline != nil && !req.VotingDeadline.After(time.Now()) {
		return nil, fmt.Errorf("%w: %s", models.ErrDeadlineInPast, req.VotingDeadline)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	proposal := &models.Proposal{
		ID:               uuid.New(),
		TripID:           tripID,
		Kind:             req.Kind,
		ProposedBy:       proposerID,
		Status:           models.ProposalStatusActive,
		VotingDeadline:   req.VotingDeadline,
		Name:             req.Name,
		Location:         req.Location,
		Price:            req.Price,
		Currency:         currency,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		DepartureAirport: req.DepartureAirport,
		ArrivalAirport:   req.ArrivalAirport,
		FlightNumber:     req.FlightNumber,
		Capacity:         req.Capacity,
		CreatedAt:        time.Now(),
	}

	if err := ps.repo.CreateProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	log.Printf("[Propose] User %d proposed %s %q in trip %s", proposerID, proposal.Kind, proposal.Name, tripID)

	return proposal, nil
}

// resolveTimeText normalizes free-form clock strings ("2:30 PM") into
// the instant fields, anchored to the trip's start date when set.
func (ps *ProposalService) resolveTimeText(ctx context.Context, tripID uuid.UUID, req *models.CreateProposalRequest) error {
	if req.StartTimeText == "" && req.EndTimeText == "" {
		return nil
	}

	anchor := time.Now()
	trip, err := ps.repo.GetTripByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("failed to load trip: %w", err)
	}
	if trip.StartDate != nil {
		anchor = *trip.StartDate
	}

	if req.StartTime == nil && req.StartTimeText != "" {
		t, err := timeutil.ParseInstant(req.StartTimeText, anchor)
		if err != nil {
			return fmt.Errorf("%w: start_time_text %q: %v", models.ErrValidation, req.StartTimeText, err)
		}
		req.StartTime = &t
	}
	if req.EndTime == nil && req.EndTimeText != "" {
		t, err := timeutil.ParseInstant(req.EndTimeText, anchor)
		if err != nil {
			return fmt.Errorf("%w: end_time_text %q: %v", models.ErrValidation, req.EndTimeText, err)
		}
		req.EndTime = &t
	}
	return nil
}

// GetProposal retrieves a single proposal
func (ps *ProposalService) GetProposal(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	return ps.repo.GetProposalByID(ctx, proposalID)
}

// GetTripProposals returns trip proposals with their aggregated votes
func (ps *ProposalService) GetTripProposals(
	ctx context.Context,
	tripID uuid.UUID,
	kind *models.ProposalKind,
) ([]*models.ProposalView, error) {
	proposals, err := ps.repo.GetTripProposals(ctx, tripID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}

	views := make([]*models.ProposalView, 0, len(proposals))
	for _, proposal := range proposals {
		set, err := ps.voting.GetRankSet(ctx, proposal.ID, proposal.Kind)
		if err != nil {
			return nil, err
		}
		views = append(views, &models.ProposalView{
			Proposal:       proposal,
			Ranks:          set.Ranks,
			AverageRanking: set.AverageRanking,
			Thumbs:         set.Thumbs,
		})
	}
	return views, nil
}

// AnnotateCandidateConflicts fills each active proposal's Conflicts
// with overlaps against the viewer's confirmed calendar. Conflicts are
// viewer-specific, so this runs per request over the (possibly cached)
// views rather than being baked into the shared list.
func (ps *ProposalService) AnnotateCandidateConflicts(
	ctx context.Context,
	viewerID uint,
	tripID uuid.UUID,
	views []*models.ProposalView,
) error {
	entries, err := ps.repo.GetTripSchedule(ctx, tripID)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	entryIDs := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		entryIDs[i] = entry.ID
	}
	invites, err := ps.repo.GetUserInvites(ctx, viewerID, entryIDs)
	if err != nil {
		return fmt.Errorf("failed to load invites: %w", err)
	}

	for _, view := range views {
		if view.Proposal == nil || view.Proposal.Status != models.ProposalStatusActive {
			continue
		}
		view.Conflicts = DetectCandidateConflicts(
			viewerID, view.Proposal.StartTime, view.Proposal.EndTime, entries, invites)
	}
	return nil
}
