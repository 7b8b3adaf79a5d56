package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Rings follow the orb convention: closed, with the first vertex repeated at
// the end. Measurements are planar, taken in the UTM zone of the ring.

var ErrDegenerate = errors.New("geometry has fewer than 3 vertices")

// Statistics holds the derived measurements for a property polygon
type Statistics struct {
	AreaHectares float64   `json:"area_hectares"`
	AreaM2       float64   `json:"area_m2"`
	PerimeterM   float64   `json:"perimeter_m"`
	Centroid     orb.Point `json:"centroid"`
	// Compactness is 4π·area/perimeter²; 1.0 for a circle
	Compactness float64 `json:"compactness"`
}

// Area returns the ring's area in square meters, measured in the UTM zone of
// its vertices. Self-intersecting rings are split at their crossings first
// and the lobe areas summed.
func Area(r orb.Ring) (float64, error) {
	if distinctVertices(r) < 3 {
		return 0, ErrDegenerate
	}
	zone, south := utmZoneOf(r)
	total := 0.0
	for _, lobe := range Repair(r) {
		total += math.Abs(planar.Area(projectRing(lobe, zone, south)))
	}
	return total, nil
}

// Perimeter returns the ring outline length in meters
func Perimeter(r orb.Ring) (float64, error) {
	if distinctVertices(r) < 3 {
		return 0, ErrDegenerate
	}
	zone, south := utmZoneOf(r)
	return planar.Length(projectRing(closeRing(r), zone, south)), nil
}

// Contains reports whether the point lies inside the ring
func Contains(r orb.Ring, pt orb.Point) bool {
	return planar.RingContains(closeRing(r), pt)
}

// Simplify reduces the ring with Douglas-Peucker at the given tolerance
// (degrees), keeping at least 4 distinct vertices.
func Simplify(r orb.Ring, tolerance float64) orb.Ring {
	if tolerance <= 0 || distinctVertices(r) <= 4 {
		return r
	}
	out := simplify.DouglasPeucker(tolerance).Ring(r.Clone())
	if distinctVertices(out) < 4 {
		return r
	}
	return out
}

// IsSimple reports whether no two non-adjacent edges of the ring cross
func IsSimple(r orb.Ring) bool {
	pts := openVertices(r)
	n := len(pts)
	if n < 4 {
		return true
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			// Skip adjacent edges, including the first/last pair
			if i == 0 && j == n-1 {
				continue
			}
			if _, crosses := segmentIntersection(pts[i], pts[(i+1)%n], pts[j], pts[(j+1)%n]); crosses {
				return false
			}
		}
	}
	return true
}

// Repair splits a self-intersecting ring at its edge crossings and returns
// the resulting simple rings, each closed. A simple ring comes back
// unchanged. orb carries no make-valid operation, so the splitting happens
// here on top of its ring type.
func Repair(r orb.Ring) []orb.Ring {
	loops := splitLoops(openVertices(r))
	out := make([]orb.Ring, len(loops))
	for i, loop := range loops {
		out[i] = closeRing(orb.Ring(loop))
	}
	return out
}

// Boundary returns the polygon with the largest outer-ring area, which is
// the property boundary when the source geometry is a multi-polygon.
func Boundary(mp orb.MultiPolygon) (orb.Polygon, error) {
	if len(mp) == 0 {
		return nil, ErrDegenerate
	}
	best := 0
	bestArea := -1.0
	for i, poly := range mp {
		if len(poly) == 0 {
			continue
		}
		area, err := Area(poly[0])
		if err != nil {
			continue
		}
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	if bestArea < 0 {
		return nil, ErrDegenerate
	}
	return mp[best], nil
}

// CalculateStatistics measures the polygon's outer ring
func CalculateStatistics(p orb.Polygon) (*Statistics, error) {
	if len(p) == 0 {
		return nil, ErrDegenerate
	}
	outer := p[0]
	area, err := Area(outer)
	if err != nil {
		return nil, err
	}
	perimeter, err := Perimeter(outer)
	if err != nil {
		return nil, err
	}
	centroid, _ := planar.CentroidArea(closeRing(outer))

	stats := &Statistics{
		AreaHectares: area / 10000,
		AreaM2:       area,
		PerimeterM:   perimeter,
		Centroid:     centroid,
	}
	if perimeter > 0 {
		stats.Compactness = 4 * math.Pi * area / (perimeter * perimeter)
	}
	return stats, nil
}

// distinctVertices counts the ring's vertices without the closing repeat
func distinctVertices(r orb.Ring) int {
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	return n
}

func openVertices(r orb.Ring) []orb.Point {
	return r[:distinctVertices(r)]
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 1 && r[0] != r[len(r)-1] {
		closed := make(orb.Ring, len(r), len(r)+1)
		copy(closed, r)
		return append(closed, r[0])
	}
	return r
}

// utmZoneOf picks the projection zone from the vertex mean, which stays
// finite for zero-area self-intersecting rings where the weighted centroid
// does not.
func utmZoneOf(r orb.Ring) (zone int, south bool) {
	pts := openVertices(r)
	var sx, sy float64
	for _, pt := range pts {
		sx += pt[0]
		sy += pt[1]
	}
	n := float64(len(pts))
	return UTMZone(sx / n), sy/n < 0
}

func projectRing(r orb.Ring, zone int, south bool) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, pt := range r {
		x, y := projectUTM(pt[0], pt[1], zone, south)
		out[i] = orb.Point{x, y}
	}
	return out
}

func splitLoops(pts []orb.Point) [][]orb.Point {
	n := len(pts)
	if n < 4 {
		return [][]orb.Point{pts}
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			p, crosses := segmentIntersection(pts[i], pts[(i+1)%n], pts[j], pts[(j+1)%n])
			if !crosses {
				continue
			}
			// Split into the two loops that meet at p and repair each
			// recursively; multiple crossings resolve one at a time.
			loopA := append([]orb.Point{p}, pts[i+1:j+1]...)
			loopB := append([]orb.Point{p}, pts[j+1:]...)
			loopB = append(loopB, pts[:i+1]...)

			out := make([][]orb.Point, 0, 2)
			out = append(out, splitLoops(loopA)...)
			out = append(out, splitLoops(loopB)...)
			return out
		}
	}
	return [][]orb.Point{pts}
}

// segmentIntersection returns the proper crossing point of segments a1-a2 and
// b1-b2. Touching endpoints do not count as a crossing.
func segmentIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	d1x, d1y := a2[0]-a1[0], a2[1]-a1[1]
	d2x, d2y := b2[0]-b1[0], b2[1]-b1[1]

	denom := d1x*d2y - d1y*d2x
	if denom == 0 {
		return orb.Point{}, false
	}

	t := ((b1[0]-a1[0])*d2y - (b1[1]-a1[1])*d2x) / denom
	u := ((b1[0]-a1[0])*d1y - (b1[1]-a1[1])*d1x) / denom

	const eps = 1e-12
	if t <= eps || t >= 1-eps || u <= eps || u >= 1-eps {
		return orb.Point{}, false
	}
	return orb.Point{a1[0] + t*d1x, a1[1] + t*d1y}, true
}
