package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"trip-planner/internal/auth"
	"trip-planner/internal/models"
	"trip-planner/internal/optimistic"
	"trip-planner/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
	coordinator     *optimistic.Coordinator
}

func NewProposalHandler(
	proposalService *services.ProposalService,
	coordinator *optimistic.Coordinator,
) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		coordinator:     coordinator,
	}
}

// cache keys shared by the proposal read and mutation paths

func tripProposalsKey(tripID uuid.UUID) string {
	return fmt.Sprintf("trip:%s:proposals", tripID)
}

func tripScheduleKey(tripID uuid.UUID) string {
	return fmt.Sprintf("trip:%s:schedule", tripID)
}

func proposalRanksKey(proposalID uuid.UUID) string {
	return fmt.Sprintf("proposal:%s:ranks", proposalID)
}

func entryInvitesKey(entryID uuid.UUID) string {
	return fmt.Sprintf("entry:%s:invites", entryID)
}

// CreateProposal proposes a candidate item
// POST /api/trips/:id/proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.Propose(c.Request.Context(), tripID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.coordinator.Cache().Invalidate(tripProposalsKey(tripID))

	c.JSON(http.StatusCreated, proposal)
}

// ListProposals returns trip proposals with aggregated votes, served
// from the shared view cache when materialized
// GET /api/trips/:id/proposals
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	var kind *models.ProposalKind
	if raw := c.Query("kind"); raw != "" {
		k := models.ProposalKind(raw)
		kind = &k
	}

	// Kind-filtered queries bypass the cache; the cached view is the
	// whole trip
	var views []*models.ProposalView
	hit := kind == nil && h.coordinator.Cache().Get(tripProposalsKey(tripID), &views)
	if !hit {
		views, err = h.proposalService.GetTripProposals(c.Request.Context(), tripID, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		if kind == nil {
			_ = h.coordinator.Cache().Set(tripProposalsKey(tripID), views)
		}
	}

	// Conflict warnings are viewer-specific and never cached
	if err := h.proposalService.AnnotateCandidateConflicts(c.Request.Context(), userID, tripID, views); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// CancelProposal withdraws a proposal (proposer only)
// POST /api/proposals/:id/cancel
func (h *ProposalHandler) CancelProposal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := h.proposalService.GetProposal(c.Request.Context(), proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	proposalsKey := tripProposalsKey(proposal.TripID)
	result, err := h.coordinator.Apply(c.Request.Context(), optimistic.Mutation{
		EntityKey: "proposal:" + proposalID.String(),
		Affects:   []string{proposalsKey, proposalRanksKey(proposalID)},
		Speculate: func(views map[string]json.RawMessage) (map[string]json.RawMessage, error) {
			return markProposalStatus(views, proposalsKey, proposalID, models.ProposalStatusCanceled)
		},
		Durable: func(ctx context.Context) (interface{}, error) {
			return h.proposalService.Cancel(ctx, proposalID, userID)
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConvertProposal confirms a proposal into the schedule (proposer only)
// POST /api/proposals/:id/convert
func (h *ProposalHandler) ConvertProposal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := h.proposalService.GetProposal(c.Request.Context(), proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	proposalsKey := tripProposalsKey(proposal.TripID)
	result, err := h.coordinator.Apply(c.Request.Context(), optimistic.Mutation{
		EntityKey: "proposal:" + proposalID.String(),
		Affects:   []string{proposalsKey},
		Speculate: func(views map[string]json.RawMessage) (map[string]json.RawMessage, error) {
			return markProposalStatus(views, proposalsKey, proposalID, models.ProposalStatusScheduled)
		},
		Durable: func(ctx context.Context) (interface{}, error) {
			return h.proposalService.Convert(ctx, proposalID, userID)
		},
		Invalidates: []string{tripScheduleKey(proposal.TripID)},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// markProposalStatus applies the terminal transition to the cached
// proposal list view, mirroring what the durable call will do.
func markProposalStatus(
	views map[string]json.RawMessage,
	proposalsKey string,
	proposalID uuid.UUID,
	status models.ProposalStatus,
) (map[string]json.RawMessage, error) {
	raw, ok := views[proposalsKey]
	if !ok {
		return nil, nil
	}
	var list []*models.ProposalView
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, nil
	}
	for _, view := range list {
		if view.Proposal != nil && view.Proposal.ID == proposalID {
			view.Proposal.Status = status
		}
	}
	updated, err := json.Marshal(list)
	if err != nil {
		return nil, nil
	}
	return map[string]json.RawMessage{proposalsKey: updated}, nil
}
