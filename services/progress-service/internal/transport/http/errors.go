package handlers

import (
	"errors"
	"net/http"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto status codes. Store details never reach the client.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	var notEligible *domain.NotEligibleError
	switch {
	case errors.As(err, &notEligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      notEligible.Reason,
			"eligible":   false,
			"percentage": notEligible.Percentage,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error("store unavailable", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable", "retryable": true})
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
