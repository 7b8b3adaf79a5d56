package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/search"
	"github.com/eroview/sicar-api/internal/utils"
)

// SearchHandler handles property search requests
type SearchHandler struct {
	manager *search.Manager
	logger  *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(manager *search.Manager, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		manager: manager,
		logger:  logger,
	}
}

// searchRequest is the JSON body accepted by the search endpoints. Both the
// short and long field names are recognized.
type searchRequest struct {
	Lat         *float64 `json:"lat"`
	Latitude    *float64 `json:"latitude"`
	Lon         *float64 `json:"lon"`
	Longitude   *float64 `json:"longitude"`
	Coordinates string   `json:"coordinates"`
}

// parseCoordinate extracts the requested coordinate from the JSON body, form
// fields, or query parameters, in that order. A free-text "coordinates"
// field is accepted as a fallback and may be a decimal pair, DMS pair, or a
// Google Maps URL.
func parseCoordinate(c *gin.Context) (models.Coordinate, bool) {
	var body searchRequest
	if c.ContentType() == "application/json" && c.ShouldBindJSON(&body) == nil {
		lat := firstFloat(body.Lat, body.Latitude)
		lon := firstFloat(body.Lon, body.Longitude)
		if lat != nil && lon != nil {
			return models.Coordinate{Lat: *lat, Lon: *lon}, true
		}
		if body.Coordinates != "" {
			if coord, ok := utils.ExtractCoordinates(body.Coordinates); ok {
				return coord, true
			}
		}
	}

	for _, names := range [][2]string{{"lat", "lon"}, {"latitude", "longitude"}} {
		latStr := firstValue(c, names[0])
		lonStr := firstValue(c, names[1])
		if latStr == "" || lonStr == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat == nil && errLon == nil {
			return models.Coordinate{Lat: lat, Lon: lon}, true
		}
	}

	if raw := firstValue(c, "coordinates"); raw != "" {
		if coord, ok := utils.ExtractCoordinates(raw); ok {
			return coord, true
		}
	}

	return models.Coordinate{}, false
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstValue(c *gin.Context, name string) string {
	if v := c.PostForm(name); v != "" {
		return v
	}
	return c.Query(name)
}

// Start handles new search requests
// @Summary Start a property search
// @Description Start an asynchronous search for the rural property registered at a coordinate
// @Tags Search
// @Accept json
// @Produce json
// @Param request body searchRequest true "Coordinate to search"
// @Success 202 {object} models.SearchStartedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /sicar/search [post]
func (h *SearchHandler) Start(c *gin.Context) {
	requestID := c.GetString("request_id")

	coord, ok := parseCoordinate(c)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Missing coordinates",
			Message:   "Provide latitude and longitude as numbers, or a coordinates string",
			Code:      "MISSING_COORDINATES",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	if err := coord.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid coordinates",
			Message:   err.Error(),
			Code:      "INVALID_COORDINATES",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	job, err := h.manager.Start(coord, false)
	if err != nil {
		if errors.Is(err, search.ErrSearchRunning) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:     "Search already running",
				Message:   "Wait for the current search to finish or cancel it first",
				Code:      "SEARCH_RUNNING",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   err.Error(),
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"search_id":  job.ID(),
		"latitude":   coord.Lat,
		"longitude":  coord.Lon,
	}).Info("Search accepted")

	c.JSON(http.StatusAccepted, models.SearchStartedResponse{
		Success:  true,
		SearchID: job.ID(),
		Message:  "Busca iniciada",
		Progress: 0,
	})
}

// Status returns the state of a search
// @Summary Get search status
// @Tags Search
// @Produce json
// @Param id path string true "Search identifier"
// @Success 200 {object} models.SearchStatus
// @Failure 404 {object} models.ErrorResponse
// @Router /sicar/status/{id} [get]
func (h *SearchHandler) Status(c *gin.Context) {
	status, err := h.manager.Status(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Search not found",
			Message:   "No search exists with the given identifier",
			Code:      "SEARCH_NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Cancel stops a running search
// @Summary Cancel a search
// @Tags Search
// @Produce json
// @Param id path string true "Search identifier"
// @Success 200 {object} models.OperationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /sicar/cancel/{id} [post]
func (h *SearchHandler) Cancel(c *gin.Context) {
	err := h.manager.Cancel(c.Param("id"))
	switch {
	case errors.Is(err, search.ErrSearchNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Search not found",
			Message:   "No search exists with the given identifier",
			Code:      "SEARCH_NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.Is(err, search.ErrNotRunning):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Search not running",
			Message:   "The search already finished",
			Code:      "SEARCH_NOT_RUNNING",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   err.Error(),
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	default:
		c.JSON(http.StatusOK, models.OperationResponse{
			Success: true,
			Message: "Busca cancelada",
		})
	}
}

// StartLegacy handles the original start endpoint. Unlike Start, it replaces
// a running search instead of rejecting the request.
// @Summary Start a search (legacy)
// @Tags Legacy
// @Accept json
// @Produce json
// @Success 202 {object} models.SearchStartedResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /iniciar [post]
func (h *SearchHandler) StartLegacy(c *gin.Context) {
	coord, ok := parseCoordinate(c)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Missing coordinates",
			Message:   "Provide latitude and longitude as numbers, or a coordinates string",
			Code:      "MISSING_COORDINATES",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	if err := coord.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid coordinates",
			Message:   err.Error(),
			Code:      "INVALID_COORDINATES",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	job, err := h.manager.Start(coord, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   err.Error(),
			Code:      "INTERNAL_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusAccepted, models.SearchStartedResponse{
		Success:  true,
		SearchID: job.ID(),
		Message:  "Busca iniciada",
		Progress: 5,
	})
}

// CancelLegacy stops the current search
// @Summary Cancel the current search (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {object} models.OperationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cancelar [post]
func (h *SearchHandler) CancelLegacy(c *gin.Context) {
	if err := h.manager.CancelCurrent(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "No search running",
			Message:   "There is no search in progress to cancel",
			Code:      "SEARCH_NOT_RUNNING",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	c.JSON(http.StatusOK, models.OperationResponse{
		Success: true,
		Message: "Busca cancelada",
	})
}

// StatusLegacy returns the state of the current search with a step-derived
// progress value.
// @Summary Get current search status (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {object} models.SearchStatus
// @Router /status [get]
func (h *SearchHandler) StatusLegacy(c *gin.Context) {
	status, err := h.manager.Latest()
	if err != nil {
		c.JSON(http.StatusOK, models.SearchStatus{
			Status:  models.SearchIdle,
			Message: "Nenhuma busca iniciada",
			Steps:   models.DefaultSteps(),
		})
		return
	}
	status.Progress = search.StepProgress(status.Steps)
	c.JSON(http.StatusOK, status)
}

// ResultLegacy returns the result of the most recent search
// @Summary Get the latest search result (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {object} models.ResultResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /resultado [get]
func (h *SearchHandler) ResultLegacy(c *gin.Context) {
	result, err := h.manager.Result()
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "No result available",
			Message:   "No finished search has produced a result yet",
			Code:      "NO_RESULT",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	c.JSON(http.StatusOK, models.ResultResponse{
		Success: true,
		Result:  result,
	})
}
