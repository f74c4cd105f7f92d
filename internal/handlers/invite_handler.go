package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"trip-planner/internal/auth"
	"trip-planner/internal/models"
	"trip-planner/internal/optimistic"
	"trip-planner/internal/repository"
	"trip-planner/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InviteHandler struct {
	inviteService *services.InviteService
	repo          *repository.Repository
	coordinator   *optimistic.Coordinator
}

func NewInviteHandler(
	inviteService *services.InviteService,
	repo *repository.Repository,
	coordinator *optimistic.Coordinator,
) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		repo:          repo,
		coordinator:   coordinator,
	}
}

// Respond answers the caller's invite on a schedule entry
// POST /api/schedule/:id/respond
func (h *InviteHandler) Respond(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.repo.GetScheduleEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, err)
		return
	}

	invitesKey := entryInvitesKey(entryID)
	result, err := h.coordinator.Apply(c.Request.Context(), optimistic.Mutation{
		EntityKey: "entry:" + entryID.String(),
		Affects:   []string{invitesKey, tripScheduleKey(entry.TripID)},
		Speculate: func(views map[string]json.RawMessage) (map[string]json.RawMessage, error) {
			raw, ok := views[invitesKey]
			if !ok {
				return nil, nil
			}
			var invites []models.Invite
			if err := json.Unmarshal(raw, &invites); err != nil {
				return nil, nil
			}
			updated := services.ApplyResponseLocally(invites, entryID, userID, req.Action, entry.Capacity)
			out, err := json.Marshal(updated)
			if err != nil {
				return nil, nil
			}
			return map[string]json.RawMessage{invitesKey: out}, nil
		},
		Durable: func(ctx context.Context) (interface{}, error) {
			return h.inviteService.Respond(ctx, entryID, userID, req.Action)
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListInvites returns all attendee invites on a schedule entry, served
// from the shared view cache when materialized
// GET /api/schedule/:id/invites
func (h *InviteHandler) ListInvites(c *gin.Context) {
	if _, exists := auth.GetUserID(c); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	invitesKey := entryInvitesKey(entryID)
	var cached []models.Invite
	if h.coordinator.Cache().Get(invitesKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	invites, err := h.repo.GetEntryInvites(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, err)
		return
	}

	_ = h.coordinator.Cache().Set(invitesKey, invites)

	c.JSON(http.StatusOK, invites)
}
