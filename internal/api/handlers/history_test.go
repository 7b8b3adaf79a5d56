package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/store"
)

func historyRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.Open(filepath.Join(t.TempDir(), "searches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	handler := NewHistoryHandler(st, quietLogger())
	router := gin.New()
	router.GET("/api/v1/searches", handler.List)
	router.GET("/api/v1/searches/:id", handler.Get)
	return router, st
}

func seedSearch(t *testing.T, st *store.Store, id string, startedAt time.Time) {
	t.Helper()
	finished := startedAt.Add(10 * time.Second)
	require.NoError(t, st.SaveSearch(context.Background(), models.SearchStatus{
		SearchID:   id,
		Status:     models.SearchCompleted,
		StartedAt:  &startedAt,
		FinishedAt: &finished,
		Result: &models.Property{
			Found:       true,
			Name:        "Propriedade Rural " + id,
			Coordinates: models.Coordinate{Lat: -23.5, Lon: -51.5},
		},
	}))
}

func TestHistoryListEmpty(t *testing.T) {
	router, _ := historyRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/searches", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHistoryListAndGet(t *testing.T) {
	router, st := historyRouter(t)
	base := time.Now().UTC().Add(-time.Hour)
	seedSearch(t, st, "older", base)
	seedSearch(t, st, "newer", base.Add(time.Minute))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/searches", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var records []store.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/searches/older", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var record store.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "older", record.ID)
	assert.Equal(t, "Propriedade Rural older", record.PropertyName.String)
}

func TestHistoryGetNotFound(t *testing.T) {
	router, _ := historyRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/searches/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
