package handlers

import (
	"errors"
	"net/http"

	"trip-planner/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps the engine's sentinel errors onto HTTP status
// codes. Staleness errors (terminal/conflict/not-found) get a neutral
// retry message so clients refetch instead of parsing internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrDeadlineInPast),
		errors.Is(err, models.ErrInvalidRankValue),
		errors.Is(err, models.ErrMissingRequiredField):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrPermission),
		errors.Is(err, models.ErrNotInvited):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "this changed, please retry"})
	case errors.Is(err, models.ErrAlreadyTerminal),
		errors.Is(err, models.ErrProposalNotActive),
		errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "this changed, please retry"})
	case errors.Is(err, models.ErrItemNoLongerOpen):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
