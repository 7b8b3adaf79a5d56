package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/services"
)

// BrowserHandler handles browser pool management requests. The routes are
// only mounted when the service runs in live mode.
type BrowserHandler struct {
	browserService services.BrowserServiceInterface
	logger         *logrus.Logger
}

// NewBrowserHandler creates a new browser handler
func NewBrowserHandler(browserService services.BrowserServiceInterface, logger *logrus.Logger) *BrowserHandler {
	return &BrowserHandler{
		browserService: browserService,
		logger:         logger,
	}
}

// GetStats handles browser pool statistics request
// @Summary Get browser pool statistics
// @Tags Browser
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /browser/stats [get]
func (h *BrowserHandler) GetStats(c *gin.Context) {
	requestID := c.GetString("request_id")
	h.logger.WithField("request_id", requestID).Info("Getting browser pool statistics")

	c.JSON(http.StatusOK, map[string]interface{}{
		"stats":     h.browserService.Stats(),
		"health":    h.browserService.Health(),
		"timestamp": time.Now(),
	})
}

// Restart handles browser pool restart request
// @Summary Restart browser pool
// @Description Restart all browsers in the pool
// @Tags Browser
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /browser/restart [post]
func (h *BrowserHandler) Restart(c *gin.Context) {
	requestID := c.GetString("request_id")
	h.logger.WithField("request_id", requestID).Info("Restarting browser pool")

	if err := h.browserService.Restart(); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to restart browser pool")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to restart browser pool",
			Code:      "BROWSER_RESTART_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Browser pool restarted successfully",
		"timestamp": time.Now(),
		"success":   true,
		"stats":     h.browserService.Stats(),
	})
}

// GetHealth handles browser pool health check request
// @Summary Get browser pool health
// @Tags Browser
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /browser/health [get]
func (h *BrowserHandler) GetHealth(c *gin.Context) {
	health := h.browserService.Health()

	httpStatus := http.StatusOK
	if health["status"] == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, map[string]interface{}{
		"health":    health,
		"stats":     h.browserService.Stats(),
		"timestamp": time.Now(),
	})
}
