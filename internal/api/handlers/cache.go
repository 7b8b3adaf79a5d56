package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/services"
)

// CacheHandler handles cache management requests
type CacheHandler struct {
	cacheService services.CacheServiceInterface
	logger       *logrus.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(cacheService services.CacheServiceInterface, logger *logrus.Logger) *CacheHandler {
	return &CacheHandler{
		cacheService: cacheService,
		logger:       logger,
	}
}

// GetStats handles cache statistics request
// @Summary Get cache statistics
// @Description Get cache counters and backend health
// @Tags Cache
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cache/stats [get]
func (h *CacheHandler) GetStats(c *gin.Context) {
	requestID := c.GetString("request_id")
	h.logger.WithField("request_id", requestID).Info("Getting cache statistics")

	c.JSON(http.StatusOK, map[string]interface{}{
		"stats":     h.cacheService.Stats(),
		"health":    h.cacheService.Health(),
		"timestamp": time.Now(),
	})
}

// Clear handles cache clear request
// @Summary Clear all cache
// @Description Clear all cached search and geocoding results
// @Tags Cache
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /cache/clear [delete]
func (h *CacheHandler) Clear(c *gin.Context) {
	requestID := c.GetString("request_id")
	h.logger.WithField("request_id", requestID).Info("Clearing all cache")

	if err := h.cacheService.Clear(c.Request.Context()); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to clear cache")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to clear cache",
			Code:      "CACHE_CLEAR_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Cache cleared successfully",
		"timestamp": time.Now(),
		"success":   true,
	})
}

// Delete removes the cached result for a coordinate
// @Summary Delete a cached coordinate result
// @Description Remove the cached property and geocoding entries for a coordinate
// @Tags Cache
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /cache/coordinate [delete]
func (h *CacheHandler) Delete(c *gin.Context) {
	requestID := c.GetString("request_id")

	coord, ok := parseCoordinate(c)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Missing coordinates",
			Message:   "Provide lat and lon query parameters",
			Code:      "MISSING_COORDINATES",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	keys := []string{
		fmt.Sprintf("sicar:%.6f_%.6f", coord.Lat, coord.Lon),
		fmt.Sprintf("geo:%.6f_%.6f", coord.Lat, coord.Lon),
	}
	for _, key := range keys {
		if err := h.cacheService.Delete(c.Request.Context(), key); err != nil {
			h.logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"key":        key,
				"error":      err.Error(),
			}).Warn("Failed to delete cache entry")
		}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Cache entries deleted",
		"timestamp": time.Now(),
		"success":   true,
	})
}
