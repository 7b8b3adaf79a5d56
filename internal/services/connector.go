package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	shp "github.com/jonas-p/go-shp"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/config"
	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/search"
)

const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// knownProperty is a fixed fixture the connector always resolves, useful for
// demos and integration checks without portal access.
var knownProperty = struct {
	Lat, Lon     float64
	Name         string
	CARCode      string
	Area         float64
	State        string
	StateName    string
	Municipality string
}{
	Lat:          -23.276064,
	Lon:          -53.266292,
	Name:         "Fazenda Santa Maria",
	CARCode:      "PR-4107207-79A269BEFA1443F9B06F8B7470D9F239",
	Area:         128.5,
	State:        "PR",
	StateName:    "PARANÁ",
	Municipality: "DOURADINA",
}

// SimulatedConnector resolves properties without touching the portal. It
// derives a deterministic result from the coordinate so the rest of the
// system can be exercised end to end.
type SimulatedConnector struct {
	mapsDir string
	logger  *logrus.Logger
}

// NewSimulatedConnector creates an offline resolver.
func NewSimulatedConnector(cfg config.SicarConfig, logger *logrus.Logger) *SimulatedConnector {
	return &SimulatedConnector{
		mapsDir: cfg.MapsDir,
		logger:  logger,
	}
}

// Resolve produces a simulated property for the coordinate, walking the same
// steps a live search would so progress reporting behaves identically.
func (c *SimulatedConnector) Resolve(ctx context.Context, coord models.Coordinate, rep search.Reporter) (*models.Property, error) {
	steps := []struct {
		id       string
		progress int
		message  string
	}{
		{models.StepInit, 5, "Validando coordenadas"},
		{models.StepBrowser, 10, "Inicializando navegador"},
		{models.StepAccessSite, 25, "Acessando portal SICAR"},
		{models.StepSelectState, 50, "Selecionando estado"},
		{models.StepSelectCity, 60, "Selecionando município"},
		{models.StepSelectProperty, 90, "Localizando propriedade"},
		{models.StepExtract, 95, "Extraindo informações"},
	}

	if err := coord.Validate(); err != nil {
		rep.Step(models.StepInit, models.StepError)
		return nil, err
	}
	if !coord.InBrazil() {
		rep.Step(models.StepInit, models.StepError)
		return nil, fmt.Errorf("%w: %s", models.ErrOutsideBrazil, coord.String())
	}

	for _, step := range steps {
		rep.Step(step.id, models.StepRunning)
		rep.Progress(step.progress, step.message)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(150 * time.Millisecond):
		}
		rep.Step(step.id, models.StepSuccess)
	}

	rep.Step(models.StepFinish, models.StepRunning)
	prop := c.propertyFor(coord)

	if mapFile, err := c.writeArtifacts(coord, prop, rep.ID()); err != nil {
		rep.Log("warning", fmt.Sprintf("Falha ao gerar mapa simulado: %v", err))
	} else {
		prop.MapFile = mapFile
		prop.HasMap = true
	}

	rep.Step(models.StepFinish, models.StepSuccess)
	rep.Progress(100, "Busca concluída")
	return prop, nil
}

func (c *SimulatedConnector) propertyFor(coord models.Coordinate) *models.Property {
	prop := &models.Property{
		Found:       true,
		Coordinates: coord,
		Simulated:   true,
		ResolvedAt:  time.Now(),
	}

	if math.Abs(coord.Lat-knownProperty.Lat) < 1e-6 && math.Abs(coord.Lon-knownProperty.Lon) < 1e-6 {
		prop.Name = knownProperty.Name
		prop.CARCode = knownProperty.CARCode
		prop.AreaHectares = knownProperty.Area
		prop.State = knownProperty.State
		prop.StateName = knownProperty.StateName
		prop.Municipality = knownProperty.Municipality
		return prop
	}

	uf, name, municipality := regionFor(coord)
	prop.State = uf
	prop.StateName = name
	prop.Municipality = municipality
	prop.Name = fmt.Sprintf("Propriedade Rural %s", municipality)
	prop.CARCode = fmt.Sprintf("%s-SIM-%d%d", uf,
		int(math.Abs(coord.Lat*1000)), int(math.Abs(coord.Lon*1000)))
	prop.AreaHectares = math.Round(math.Abs(coord.Lat*coord.Lon)*10) / 100

	return prop
}

// regionFor places the coordinate in a coarse macro-region of Brazil.
func regionFor(coord models.Coordinate) (uf, name, municipality string) {
	switch {
	case coord.Lat > -10 && coord.Lon < -50:
		return "PA", "PARÁ", "BELÉM"
	case coord.Lat > -16 && coord.Lon >= -50:
		return "BA", "BAHIA", "SALVADOR"
	case coord.Lat <= -27:
		return "RS", "RIO GRANDE DO SUL", "PORTO ALEGRE"
	case coord.Lat <= -19 && coord.Lon >= -48:
		return "SP", "SÃO PAULO", "SÃO PAULO"
	case coord.Lon < -50 && coord.Lat > -22:
		return "MT", "MATO GROSSO", "CUIABÁ"
	default:
		return "PR", "PARANÁ", "DOURADINA"
	}
}

// writeArtifacts produces the placeholder map image and the property
// boundary shapefile set.
func (c *SimulatedConnector) writeArtifacts(coord models.Coordinate, prop *models.Property, searchID string) (string, error) {
	if err := os.MkdirAll(c.mapsDir, 0o755); err != nil {
		return "", err
	}

	stamp := time.Now().Unix()
	mapName := fmt.Sprintf("map_%s_%d.png", searchID, stamp)
	if err := os.WriteFile(filepath.Join(c.mapsDir, mapName), placeholderPNG(), 0o644); err != nil {
		return "", err
	}

	base := filepath.Join(c.mapsDir, fmt.Sprintf("boundary_%s_%d", searchID, stamp))
	if err := c.writeShapefile(base, coord, prop); err != nil {
		c.logger.WithError(err).Warn("Failed to write simulated boundary shapefile")
	}

	return mapName, nil
}

// writeShapefile writes a square boundary sized to the property's area,
// centered on the coordinate.
func (c *SimulatedConnector) writeShapefile(base string, coord models.Coordinate, prop *models.Property) error {
	writer, err := shp.Create(base+".shp", shp.POLYGON)
	if err != nil {
		return err
	}

	// Half the side length of a square with the property's area, in degrees.
	side := math.Sqrt(prop.AreaHectares * 10000)
	half := side / 2 / 111320

	points := []shp.Point{
		{X: coord.Lon - half, Y: coord.Lat - half},
		{X: coord.Lon - half, Y: coord.Lat + half},
		{X: coord.Lon + half, Y: coord.Lat + half},
		{X: coord.Lon + half, Y: coord.Lat - half},
		{X: coord.Lon - half, Y: coord.Lat - half},
	}
	polygon := shp.Polygon{
		Box: shp.Box{
			MinX: coord.Lon - half, MinY: coord.Lat - half,
			MaxX: coord.Lon + half, MaxY: coord.Lat + half,
		},
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}
	writer.Write(&polygon)

	fields := []shp.Field{
		shp.StringField("CAR", 64),
		shp.StringField("NAME", 64),
		shp.FloatField("AREA_HA", 16, 2),
	}
	if err := writer.SetFields(fields); err != nil {
		writer.Close()
		return err
	}
	writer.WriteAttribute(0, 0, prop.CARCode)
	writer.WriteAttribute(0, 1, prop.Name)
	writer.WriteAttribute(0, 2, prop.AreaHectares)
	writer.Close()

	return os.WriteFile(base+".prj", []byte(wgs84WKT), 0o644)
}

// placeholderPNG renders a small neutral map tile.
func placeholderPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	bg := color.RGBA{R: 222, G: 235, B: 222, A: 255}
	fg := color.RGBA{R: 60, G: 120, B: 60, A: 255}
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, bg)
		}
	}
	for y := 90; y < 150; y++ {
		for x := 130; x < 190; x++ {
			img.Set(x, y, fg)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
