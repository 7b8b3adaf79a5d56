package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eroview/sicar-api/internal/config"
)

// ConfigHandler exposes the non-sensitive runtime configuration
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// GetConfig returns the active search configuration
// @Summary Get runtime configuration
// @Tags Config
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /config [get]
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode":            h.cfg.Sicar.Mode,
		"portal_url":      h.cfg.Sicar.PortalURL,
		"search_timeout":  h.cfg.Sicar.SearchTimeout.String(),
		"max_nav_retries": h.cfg.Sicar.MaxNavRetries,
		"maps_dir":        h.cfg.Sicar.MapsDir,
		"environment":     h.cfg.Server.Environment,
	})
}
