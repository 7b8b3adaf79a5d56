package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapsRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	handler := NewMapsHandler(dir, quietLogger())
	router := gin.New()
	router.GET("/sicar/map/:filename", handler.GetMap)
	return router, dir
}

func TestGetMapServesFile(t *testing.T) {
	router, dir := mapsRouter(t)
	content := []byte{0x89, 'P', 'N', 'G', '\r', '\n'}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map_abc_1.png"), content, 0o644))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/map/map_abc_1.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
}

func TestGetMapUnknownFile(t *testing.T) {
	router, _ := mapsRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/map/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMapRejectsTraversal(t *testing.T) {
	router, dir := mapsRouter(t)

	// a file outside the maps dir must be unreachable
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("do not serve"), 0o644))

	// names that reach the handler and are rejected outright
	for _, name := range []string{"..", "a..b.png", `back\slash.png`} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/map/"+name, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "filename %q must be rejected", name)
	}

	// encoded separators must never serve the file, whether the router or
	// the handler stops them
	for _, name := range []string{"..%2Fsecret.txt", "..%5Csecret.txt"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/map/"+name, nil))
		assert.NotEqual(t, http.StatusOK, w.Code, "filename %q must not be served", name)
		assert.NotContains(t, w.Body.String(), "do not serve")
	}
}
