package handlers

import (
	"net/http"
	"time"

	"trip-planner/internal/auth"
	"trip-planner/internal/models"
	"trip-planner/internal/repository"
	"trip-planner/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScheduleHandler struct {
	repo *repository.Repository
}

func NewScheduleHandler(repo *repository.Repository) *ScheduleHandler {
	return &ScheduleHandler{repo: repo}
}

// GetSchedule returns the trip's confirmed entries annotated with the
// caller's invite status and conflict warnings
// GET /api/trips/:id/schedule
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
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

	entries, err := h.repo.GetTripSchedule(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	entryIDs := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		entryIDs[i] = entry.ID
	}
	myInvites, err := h.repo.GetUserInvites(c.Request.Context(), userID, entryIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	conflicts := services.DetectConflicts(userID, entries, myInvites)

	inviteByItem := make(map[uuid.UUID]*models.Invite, len(myInvites))
	for i := range myInvites {
		inviteByItem[myInvites[i].ItemID] = &myInvites[i]
	}

	views := make([]*models.ScheduleEntryView, 0, len(entries))
	for _, entry := range entries {
		attendees, err := h.repo.GetEntryInvites(c.Request.Context(), entry.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		view := &models.ScheduleEntryView{
			Entry:     entry,
			MyInvite:  inviteByItem[entry.ID],
			Attendees: attendees,
			Conflicts: conflicts[entry.ID],
		}
		// An entry the caller hasn't answered yet is a candidate on
		// their calendar: warn against their confirmed set
		if view.MyInvite != nil && view.MyInvite.Status == models.InviteStatusPending {
			view.Conflicts = services.DetectCandidateConflicts(
				userID, entry.StartTime, entry.EndTime, entries, myInvites)
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// CreateEntry saves a schedule entry directly, bypassing the proposal
// flow, with pending invites for every trip member
// POST /api/trips/:id/schedule
func (h *ScheduleHandler) CreateEntry(c *gin.Context) {
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

	var req models.CreateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isMember, err := h.repo.IsTripMember(c.Request.Context(), tripID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a trip member"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	entry := &models.ScheduleEntry{
		ID:        uuid.New(),
		TripID:    tripID,
		Kind:      req.Kind,
		CreatedBy: userID,
		Title:     req.Title,
		Location:  req.Location,
		Price:     req.Price,
		Currency:  currency,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Status:    models.ScheduleEntryStatusConfirmed,
	}
	if err := h.repo.CreateScheduleEntry(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}

	members, err := h.repo.GetTripMembers(c.Request.Context(), tripID)
	if err == nil {
		now := time.Now()
		for _, member := range members {
			invite := &models.Invite{
				ID:       uuid.New(),
				ItemID:   entry.ID,
				ItemKind: entry.Kind,
				UserID:   member.UserID,
				Status:   models.InviteStatusPending,
			}
			if member.UserID == userID {
				invite.Status = models.InviteStatusAccepted
				invite.IsCreator = true
				invite.RespondedAt = &now
			}
			if err := h.repo.DB().WithContext(c.Request.Context()).Create(invite).Error; err != nil {
				respondError(c, err)
				return
			}
		}
	}

	c.JSON(http.StatusCreated, entry)
}
