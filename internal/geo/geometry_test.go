package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareRing builds a closed axis-aligned square of the given side length in
// degrees, centered on (lon, lat).
func squareRing(lon, lat, side float64) orb.Ring {
	h := side / 2
	return orb.Ring{
		{lon - h, lat - h},
		{lon + h, lat - h},
		{lon + h, lat + h},
		{lon - h, lat + h},
		{lon - h, lat - h},
	}
}

func TestRingAreaSquare(t *testing.T) {
	// Roughly 0.01° x 0.01° near the equator, about 1.11 km per side.
	ring := squareRing(-53.0, -0.5, 0.01)

	area, err := Area(ring)
	require.NoError(t, err)

	// One degree of longitude at the equator is ~111.32 km; allow for
	// latitude shrink and projection distortion.
	sideM := 0.01 * 111320 * math.Cos(-0.5*math.Pi/180)
	expected := sideM * sideM
	assert.InEpsilon(t, expected, area, 0.02)
}

func TestRingPerimeterSquare(t *testing.T) {
	ring := squareRing(-53.0, -0.5, 0.01)

	perimeter, err := Perimeter(ring)
	require.NoError(t, err)

	sideM := 0.01 * 111320 * math.Cos(-0.5*math.Pi/180)
	assert.InEpsilon(t, 4*sideM, perimeter, 0.02)
}

func TestRingAreaDegenerate(t *testing.T) {
	_, err := Area(orb.Ring{{0, 0}, {1, 1}, {0, 0}})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestRingIsSimple(t *testing.T) {
	assert.True(t, IsSimple(squareRing(-53.0, -23.0, 0.01)))

	// Bow tie: edges 0-1 and 2-3 cross.
	bowTie := orb.Ring{
		{0, 0},
		{1, 1},
		{1, 0},
		{0, 1},
		{0, 0},
	}
	assert.False(t, IsSimple(bowTie))
}

func TestRingRepairBowTie(t *testing.T) {
	bowTie := orb.Ring{
		{0, 0},
		{1, 1},
		{1, 0},
		{0, 1},
		{0, 0},
	}

	repaired := Repair(bowTie)
	require.Len(t, repaired, 2)
	for _, ring := range repaired {
		assert.True(t, IsSimple(ring))
		assert.Equal(t, ring[0], ring[len(ring)-1])
	}
}

func TestRingAreaBowTie(t *testing.T) {
	// The naive shoelace area of a unit bow tie is zero; after splitting at
	// the crossing the two triangular lobes sum to half the unit square.
	side := 0.01
	bowTie := orb.Ring{
		{-53.0, -0.5},
		{-53.0 + side, -0.5 + side},
		{-53.0 + side, -0.5},
		{-53.0, -0.5 + side},
		{-53.0, -0.5},
	}

	area, err := Area(bowTie)
	require.NoError(t, err)

	square, err := Area(squareRing(-53.0+side/2, -0.5+side/2, side))
	require.NoError(t, err)

	assert.InEpsilon(t, square/2, area, 0.02)
}

func TestRingContains(t *testing.T) {
	ring := squareRing(-53.0, -23.0, 0.02)

	assert.True(t, Contains(ring, orb.Point{-53.0, -23.0}))
	assert.True(t, Contains(ring, orb.Point{-53.005, -23.005}))
	assert.False(t, Contains(ring, orb.Point{-53.05, -23.0}))
	assert.False(t, Contains(ring, orb.Point{-53.0, -22.9}))
}

func TestRingSimplify(t *testing.T) {
	// A square with collinear midpoints on each edge.
	ring := orb.Ring{
		{0, 0}, {0.5, 0},
		{1, 0}, {1, 0.5},
		{1, 1}, {0.5, 1},
		{0, 1}, {0, 0.5},
		{0, 0},
	}

	simplified := Simplify(ring, 0.01)
	assert.Equal(t, 4, distinctVertices(simplified))

	// At or below the vertex floor the original ring comes back.
	small := squareRing(0.5, 0.5, 1)
	assert.Equal(t, small, Simplify(small, 10))
}

func TestMultiPolygonBoundary(t *testing.T) {
	small := orb.Polygon{squareRing(-53.0, -23.0, 0.001)}
	large := orb.Polygon{squareRing(-53.1, -23.1, 0.01)}

	boundary, err := Boundary(orb.MultiPolygon{small, large})
	require.NoError(t, err)
	assert.Equal(t, large[0], boundary[0])

	_, err = Boundary(orb.MultiPolygon{})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestCalculateStatistics(t *testing.T) {
	poly := orb.Polygon{squareRing(-53.0, -0.5, 0.01)}

	stats, err := CalculateStatistics(poly)
	require.NoError(t, err)

	assert.InEpsilon(t, stats.AreaM2/10000, stats.AreaHectares, 1e-9)
	assert.Greater(t, stats.PerimeterM, 0.0)
	assert.InDelta(t, -53.0, stats.Centroid[0], 1e-9)
	assert.InDelta(t, -0.5, stats.Centroid[1], 1e-9)

	// A square's compactness is π/4.
	assert.InDelta(t, math.Pi/4, stats.Compactness, 0.02)
}

func TestUTMZone(t *testing.T) {
	assert.Equal(t, 22, UTMZone(-53.266292))
	assert.Equal(t, 23, UTMZone(-45.0))
	assert.Equal(t, 1, UTMZone(-180.0))
	assert.Equal(t, 60, UTMZone(179.9))
}
