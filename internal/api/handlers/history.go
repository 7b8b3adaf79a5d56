package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/store"
)

// HistoryHandler serves finished searches from persistent storage
type HistoryHandler struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(st *store.Store, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  st,
		logger: logger,
	}
}

// List returns finished searches, newest first
// @Summary List past searches
// @Tags History
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} store.SearchRecord
// @Failure 500 {object} models.ErrorResponse
// @Router /searches [get]
func (h *HistoryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.store.ListSearches(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list searches")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Could not read search history",
			Code:      "HISTORY_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	if records == nil {
		records = []store.SearchRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// Get returns a single finished search
// @Summary Get a past search
// @Tags History
// @Produce json
// @Param id path string true "Search identifier"
// @Success 200 {object} store.SearchRecord
// @Failure 404 {object} models.ErrorResponse
// @Router /searches/{id} [get]
func (h *HistoryHandler) Get(c *gin.Context) {
	record, err := h.store.GetSearch(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Search not found",
			Message:   "No finished search exists with the given identifier",
			Code:      "SEARCH_NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	c.JSON(http.StatusOK, record)
}
