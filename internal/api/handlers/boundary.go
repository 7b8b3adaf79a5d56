package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/geo"
	"github.com/eroview/sicar-api/internal/models"
)

// BoundaryHandler measures property boundary shapefiles captured next to the
// map images.
type BoundaryHandler struct {
	mapsDir string
	logger  *logrus.Logger
}

// NewBoundaryHandler creates a new boundary handler
func NewBoundaryHandler(mapsDir string, logger *logrus.Logger) *BoundaryHandler {
	return &BoundaryHandler{
		mapsDir: mapsDir,
		logger:  logger,
	}
}

// boundaryResponse wraps the measured statistics together with a simplified
// outline suitable for drawing on a small map.
type boundaryResponse struct {
	File       string          `json:"file"`
	Statistics *geo.Statistics `json:"statistics"`
	Outline    orb.Ring        `json:"outline"`
}

// GetStatistics measures a boundary shapefile by file name
// @Summary Measure a property boundary
// @Description Compute area, perimeter, centroid, and compactness for a captured boundary shapefile
// @Tags Boundary
// @Produce json
// @Param filename path string true "Shapefile name (.shp)"
// @Success 200 {object} boundaryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /sicar/boundary/{filename} [get]
func (h *BoundaryHandler) GetStatistics(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" || filename != filepath.Base(filename) ||
		strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) ||
		filepath.Ext(filename) != ".shp" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid file name",
			Message:   "Boundary file names must be bare .shp names without path separators",
			Code:      "INVALID_FILENAME",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	fullPath := filepath.Join(h.mapsDir, filename)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Boundary not found",
			Message:   "No boundary shapefile exists with the given name",
			Code:      "BOUNDARY_NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	mp, err := geo.LoadShapefile(fullPath)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"file":  filename,
			"error": err.Error(),
		}).Error("Failed to read boundary shapefile")
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:     "Unreadable boundary",
			Message:   "The shapefile could not be parsed as polygon geometry",
			Code:      "BOUNDARY_UNREADABLE",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	boundary, err := geo.Boundary(mp)
	if err == nil {
		var stats *geo.Statistics
		stats, err = geo.CalculateStatistics(boundary)
		if err == nil {
			c.JSON(http.StatusOK, boundaryResponse{
				File:       filename,
				Statistics: stats,
				// ~11m tolerance keeps the outline small without visible drift
				Outline: geo.Simplify(boundary[0], 0.0001),
			})
			return
		}
	}

	c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
		Error:     "Degenerate boundary",
		Message:   err.Error(),
		Code:      "BOUNDARY_DEGENERATE",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
