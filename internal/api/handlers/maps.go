package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
)

// MapsHandler serves captured map images
type MapsHandler struct {
	mapsDir string
	logger  *logrus.Logger
}

// NewMapsHandler creates a new maps handler
func NewMapsHandler(mapsDir string, logger *logrus.Logger) *MapsHandler {
	return &MapsHandler{
		mapsDir: mapsDir,
		logger:  logger,
	}
}

// GetMap serves a single map image by file name
// @Summary Download a captured map image
// @Tags Maps
// @Produce png
// @Param filename path string true "Map file name"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /sicar/map/{filename} [get]
func (h *MapsHandler) GetMap(c *gin.Context) {
	filename := c.Param("filename")

	// Only bare file names are accepted; anything resembling a path is
	// rejected before touching the filesystem.
	if filename == "" || filename != filepath.Base(filename) ||
		strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid file name",
			Message:   "Map file names must not contain path separators",
			Code:      "INVALID_FILENAME",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	fullPath := filepath.Join(h.mapsDir, filename)
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Map not found",
			Message:   "No map image exists with the given name",
			Code:      "MAP_NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.File(fullPath)
}
