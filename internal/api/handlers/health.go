package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	services  *services.Container
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services *services.Container, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		services:  services,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth handles general health check
// @Summary Health check
// @Description Get the health status of the API and its dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *gin.Context) {
	servicesHealth := h.services.Health()

	// Determine overall status
	status := "healthy"
	for _, serviceHealth := range servicesHealth {
		if healthMap, ok := serviceHealth.(map[string]interface{}); ok {
			switch healthMap["status"] {
			case "unhealthy":
				status = "unhealthy"
			case "degraded":
				if status == "healthy" {
					status = "degraded"
				}
			}
		}
	}

	response := models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Services:  make(map[string]models.ServiceInfo),
		Uptime:    time.Since(h.startTime).String(),
	}

	for serviceName, serviceHealth := range servicesHealth {
		if healthMap, ok := serviceHealth.(map[string]interface{}); ok {
			serviceInfo := models.ServiceInfo{
				LastCheck: time.Now(),
			}
			if serviceStatus, ok := healthMap["status"].(string); ok {
				serviceInfo.Status = serviceStatus
			}
			if errorMsg, ok := healthMap["error"].(string); ok {
				serviceInfo.Error = errorMsg
			}
			response.Services[serviceName] = serviceInfo
		}
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, response)
}

// GetReadiness handles readiness probe
// @Summary Readiness check
// @Description Check if the API is ready to serve requests
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	servicesHealth := h.services.Health()

	ready := true
	issues := make([]string, 0)

	for _, name := range []string{"browser", "storage"} {
		serviceHealth, exists := servicesHealth[name]
		if !exists {
			continue
		}
		if healthMap, ok := serviceHealth.(map[string]interface{}); ok {
			if healthMap["status"] == "unhealthy" {
				ready = false
				issues = append(issues, name+" service is unhealthy")
			}
		}
	}

	response := map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now(),
		"services":  servicesHealth,
	}
	if len(issues) > 0 {
		response["issues"] = issues
	}

	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, response)
}

// GetLiveness handles liveness probe
// @Summary Liveness check
// @Description Check if the API is alive and responding
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
		"version":   "1.0.0",
	})
}
