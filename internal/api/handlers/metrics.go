package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/search"
	"github.com/eroview/sicar-api/internal/services"
)

// MetricsHandler handles metrics requests
type MetricsHandler struct {
	services *services.Container
	manager  *search.Manager
	logger   *logrus.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(services *services.Container, manager *search.Manager, logger *logrus.Logger) *MetricsHandler {
	return &MetricsHandler{
		services: services,
		manager:  manager,
		logger:   logger,
	}
}

// GetMetrics handles metrics request
// @Summary Get application metrics
// @Description Get search, cache, browser and runtime statistics
// @Tags Metrics
// @Produce json
// @Success 200 {object} models.MetricsResponse
// @Router /metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	requestID := c.GetString("request_id")
	h.logger.WithField("request_id", requestID).Debug("Getting application metrics")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	searchStats := h.manager.Stats()

	response := models.MetricsResponse{
		Searches: models.SearchMetrics{
			Total:     searchStats.Total,
			Completed: searchStats.Completed,
			Failed:    searchStats.Failed,
			Canceled:  searchStats.Canceled,
			Running:   searchStats.Running,
		},
		Cache: h.services.CacheService.Stats(),
		System: models.SystemMetrics{
			MemoryUsageMB: float64(m.Alloc) / 1024 / 1024,
			Goroutines:    runtime.NumGoroutine(),
		},
		Timestamp: time.Now(),
	}

	if h.services.BrowserService != nil {
		response.Browser = h.services.BrowserService.Stats()
	}

	c.JSON(http.StatusOK, response)
}
