package handlers

import (
	"net/http"
	"time"

	"trip-planner/internal/auth"
	"trip-planner/internal/models"
	"trip-planner/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TripHandler struct {
	repo *repository.Repository
}

func NewTripHandler(repo *repository.Repository) *TripHandler {
	return &TripHandler{repo: repo}
}

// CreateTrip creates a trip owned by the caller
// POST /api/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip := &models.Trip{
		ID:          uuid.New(),
		Name:        req.Name,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatorID:   userID,
		CreatedAt:   time.Now(),
	}
	if err := h.repo.CreateTrip(c.Request.Context(), trip); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// GetTrip retrieves a trip
// GET /api/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	trip, err := h.repo.GetTripByID(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// AddMember adds a user to a trip (owner only)
// POST /api/trips/:id/members
func (h *TripHandler) AddMember(c *gin.Context) {
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

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.repo.GetTripByID(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}
	if trip.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the trip owner can add members"})
		return
	}

	member := &models.TripMember{
		ID:     uuid.New(),
		TripID: tripID,
		UserID: req.UserID,
		Role:   models.TripMemberRoleMember,
	}
	if err := h.repo.AddTripMember(c.Request.Context(), member); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}
