package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eroview/sicar-api/internal/config"
	"github.com/eroview/sicar-api/internal/models"
)

// recordingReporter captures progress callbacks for assertions
type recordingReporter struct {
	id       string
	steps    map[string]string
	progress int
	logs     []string
}

func newRecordingReporter(id string) *recordingReporter {
	return &recordingReporter{id: id, steps: make(map[string]string)}
}

func (r *recordingReporter) ID() string { return r.id }

func (r *recordingReporter) Step(id, status string) { r.steps[id] = status }

func (r *recordingReporter) Progress(pct int, _ string) {
	if pct > r.progress {
		r.progress = pct
	}
}

func (r *recordingReporter) Log(_, message string) { r.logs = append(r.logs, message) }

func newTestConnector(t *testing.T) (*SimulatedConnector, string) {
	t.Helper()
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSimulatedConnector(config.SicarConfig{MapsDir: dir}, logger), dir
}

func TestSimulatedConnectorKnownProperty(t *testing.T) {
	connector, dir := newTestConnector(t)
	rep := newRecordingReporter("sim-test-1")

	prop, err := connector.Resolve(context.Background(), models.Coordinate{Lat: -23.276064, Lon: -53.266292}, rep)
	require.NoError(t, err)
	require.NotNil(t, prop)

	assert.True(t, prop.Found)
	assert.True(t, prop.Simulated)
	assert.Equal(t, "Fazenda Santa Maria", prop.Name)
	assert.Equal(t, "PR-4107207-79A269BEFA1443F9B06F8B7470D9F239", prop.CARCode)
	assert.InDelta(t, 128.5, prop.AreaHectares, 0.001)
	assert.Equal(t, "PR", prop.State)
	assert.Equal(t, "PARANÁ", prop.StateName)
	assert.Equal(t, "DOURADINA", prop.Municipality)
	assert.Equal(t, 100, rep.progress)

	// every pipeline step ends in success
	for _, id := range []string{
		models.StepInit, models.StepBrowser, models.StepAccessSite,
		models.StepSelectState, models.StepSelectCity,
		models.StepSelectProperty, models.StepExtract, models.StepFinish,
	} {
		assert.Equal(t, models.StepSuccess, rep.steps[id], "step %s", id)
	}

	// map image and boundary shapefile set land in the maps dir
	require.True(t, prop.HasMap)
	assert.True(t, strings.HasPrefix(prop.MapFile, "map_sim-test-1_"))
	_, err = os.Stat(filepath.Join(dir, prop.MapFile))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var foundSHP, foundPRJ bool
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".shp":
			foundSHP = true
		case ".prj":
			foundPRJ = true
		}
	}
	assert.True(t, foundSHP, "boundary .shp missing")
	assert.True(t, foundPRJ, "boundary .prj missing")
}

func TestSimulatedConnectorRegions(t *testing.T) {
	tests := []struct {
		name             string
		coord            models.Coordinate
		wantUF           string
		wantMunicipality string
	}{
		{"amazon basin", models.Coordinate{Lat: -3.1, Lon: -60.0}, "PA", "BELÉM"},
		{"northeast", models.Coordinate{Lat: -12.9, Lon: -38.5}, "BA", "SALVADOR"},
		{"far south", models.Coordinate{Lat: -30.0, Lon: -51.2}, "RS", "PORTO ALEGRE"},
		{"southeast", models.Coordinate{Lat: -22.0, Lon: -47.0}, "SP", "SÃO PAULO"},
		{"center west", models.Coordinate{Lat: -15.6, Lon: -56.1}, "MT", "CUIABÁ"},
		{"default", models.Coordinate{Lat: -23.5, Lon: -51.5}, "PR", "DOURADINA"},
	}

	connector, _ := newTestConnector(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := newRecordingReporter("sim-" + tt.wantUF)
			prop, err := connector.Resolve(context.Background(), tt.coord, rep)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUF, prop.State)
			assert.Equal(t, tt.wantMunicipality, prop.Municipality)
			assert.Contains(t, prop.CARCode, tt.wantUF+"-SIM-")
			assert.Greater(t, prop.AreaHectares, 0.0)
		})
	}
}

func TestSimulatedConnectorRejectsOutsideBrazil(t *testing.T) {
	connector, _ := newTestConnector(t)
	rep := newRecordingReporter("sim-out")

	_, err := connector.Resolve(context.Background(), models.Coordinate{Lat: 48.85, Lon: 2.35}, rep)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrOutsideBrazil)
	assert.Equal(t, models.StepError, rep.steps[models.StepInit])
}

func TestSimulatedConnectorRejectsInvalidCoordinate(t *testing.T) {
	connector, _ := newTestConnector(t)
	rep := newRecordingReporter("sim-bad")

	_, err := connector.Resolve(context.Background(), models.Coordinate{Lat: -95, Lon: -53}, rep)
	require.Error(t, err)
}

func TestSimulatedConnectorHonorsCancellation(t *testing.T) {
	connector, _ := newTestConnector(t)
	rep := newRecordingReporter("sim-cancel")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := connector.Resolve(ctx, models.Coordinate{Lat: -23.5, Lon: -51.5}, rep)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
