package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"trip-planner/internal/auth"
	"trip-planner/internal/models"
	"trip-planner/internal/optimistic"
	"trip-planner/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	votingService   *services.VotingService
	proposalService *services.ProposalService
	coordinator     *optimistic.Coordinator
}

func NewVoteHandler(
	votingService *services.VotingService,
	proposalService *services.ProposalService,
	coordinator *optimistic.Coordinator,
) *VoteHandler {
	return &VoteHandler{
		votingService:   votingService,
		proposalService: proposalService,
		coordinator:     coordinator,
	}
}

// SubmitRank casts or toggles the caller's rank on a proposal. The
// speculative rank toggle lands in the cached views before the durable
// write; a failed write rolls them back verbatim.
// POST /api/proposals/:id/rank
func (h *VoteHandler) SubmitRank(c *gin.Context) {
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

	var req models.SubmitRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.GetProposal(c.Request.Context(), proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	ranksKey := proposalRanksKey(proposalID)
	result, err := h.coordinator.Apply(c.Request.Context(), optimistic.Mutation{
		EntityKey: "proposal:" + proposalID.String(),
		Affects:   []string{ranksKey, tripProposalsKey(proposal.TripID)},
		Speculate: func(views map[string]json.RawMessage) (map[string]json.RawMessage, error) {
			raw, ok := views[ranksKey]
			if !ok {
				return nil, nil
			}
			var ranks []models.Rank
			if err := json.Unmarshal(raw, &ranks); err != nil {
				return nil, nil
			}
			updated := services.ApplyRankLocally(ranks, proposalID, userID, req.Value)
			out, err := json.Marshal(updated)
			if err != nil {
				return nil, nil
			}
			return map[string]json.RawMessage{ranksKey: out}, nil
		},
		Durable: func(ctx context.Context) (interface{}, error) {
			return h.votingService.SubmitRank(ctx, proposalID, userID, req.Value)
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRankings returns the current rank set for a proposal, served from
// the shared view cache when materialized so speculative toggles are
// visible before the durable write lands
// GET /api/proposals/:id/rankings
func (h *VoteHandler) GetRankings(c *gin.Context) {
	if _, exists := auth.GetUserID(c); !exists {
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

	ranksKey := proposalRanksKey(proposalID)
	var ranks []models.Rank
	if !h.coordinator.Cache().Get(ranksKey, &ranks) {
		ranks, err = h.votingService.GetRanks(c.Request.Context(), proposalID)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = h.coordinator.Cache().Set(ranksKey, ranks)
	}

	set, err := h.votingService.BuildRankSet(c.Request.Context(), proposalID, proposal.Kind, ranks)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}
