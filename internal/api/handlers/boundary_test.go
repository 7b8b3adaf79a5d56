package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundaryRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	handler := NewBoundaryHandler(dir, quietLogger())
	router := gin.New()
	router.GET("/sicar/boundary/:filename", handler.GetStatistics)
	return router, dir
}

// writeSquareShapefile writes a closed square polygon of the given side length
// in degrees, centered on lon/lat.
func writeSquareShapefile(t *testing.T, path string, lon, lat, side float64) {
	t.Helper()
	writer, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	defer writer.Close()

	half := side / 2
	points := []shp.Point{
		{X: lon - half, Y: lat - half},
		{X: lon - half, Y: lat + half},
		{X: lon + half, Y: lat + half},
		{X: lon + half, Y: lat - half},
		{X: lon - half, Y: lat - half},
	}
	polygon := shp.Polygon{
		Box: shp.Box{
			MinX: lon - half, MinY: lat - half,
			MaxX: lon + half, MaxY: lat + half,
		},
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}
	writer.Write(&polygon)
}

func TestBoundaryStatistics(t *testing.T) {
	router, dir := boundaryRouter(t)
	writeSquareShapefile(t, filepath.Join(dir, "boundary_abc_1.shp"), -53.266292, -23.276064, 0.01)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/boundary/boundary_abc_1.shp", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		File       string `json:"file"`
		Statistics struct {
			AreaHectares float64    `json:"area_hectares"`
			PerimeterM   float64    `json:"perimeter_m"`
			Compactness  float64    `json:"compactness"`
			Centroid     [2]float64 `json:"centroid"`
		} `json:"statistics"`
		Outline [][2]float64 `json:"outline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "boundary_abc_1.shp", resp.File)
	// a 0.01 degree square at this latitude is roughly 1023m x 1109m
	assert.InDelta(t, 113.4, resp.Statistics.AreaHectares, 2.5)
	assert.InDelta(t, 4263, resp.Statistics.PerimeterM, 100)
	assert.InDelta(t, 0.785, resp.Statistics.Compactness, 0.02)
	assert.InDelta(t, -53.266292, resp.Statistics.Centroid[0], 0.001)
	// closed outline: four corners plus the repeated first vertex
	require.Len(t, resp.Outline, 5)
	assert.Equal(t, resp.Outline[0], resp.Outline[4])
}

func TestBoundaryNotFound(t *testing.T) {
	router, _ := boundaryRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/boundary/missing.shp", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoundaryRejectsNonShapefileNames(t *testing.T) {
	router, _ := boundaryRouter(t)
	for _, name := range []string{"map.png", "a..b.shp", "noext"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sicar/boundary/"+name, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "filename %q must be rejected", name)
	}
}
