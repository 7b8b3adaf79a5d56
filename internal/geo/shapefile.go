package geo

import (
	"fmt"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// LoadShapefile reads the polygon shapes from a SICAR shapefile download into
// an orb.MultiPolygon. Non-polygon shapes are skipped.
func LoadShapefile(path string) (orb.MultiPolygon, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	var mp orb.MultiPolygon
	for r.Next() {
		_, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		numParts := len(poly.Parts)
		out := make(orb.Polygon, 0, numParts)
		for partIdx := 0; partIdx < numParts; partIdx++ {
			start := poly.Parts[partIdx]
			end := int32(len(poly.Points))
			if partIdx+1 < numParts {
				end = poly.Parts[partIdx+1]
			}
			ring := make(orb.Ring, 0, int(end-start)+1)
			for i := start; i < end; i++ {
				ring = append(ring, orb.Point{poly.Points[i].X, poly.Points[i].Y})
			}
			ring = closeRing(ring)
			if distinctVertices(ring) >= 3 {
				out = append(out, ring)
			}
		}
		if len(out) > 0 {
			mp = append(mp, out)
		}
	}

	if len(mp) == 0 {
		return nil, fmt.Errorf("shapefile %s contains no polygon shapes", path)
	}
	return mp, nil
}

// ShapefileStatistics loads a shapefile and measures its property boundary
func ShapefileStatistics(path string) (*Statistics, error) {
	mp, err := LoadShapefile(path)
	if err != nil {
		return nil, err
	}
	boundary, err := Boundary(mp)
	if err != nil {
		return nil, err
	}
	return CalculateStatistics(boundary)
}
