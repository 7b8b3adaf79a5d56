package geo

import "math"

// WGS84 ellipsoid constants
const (
	wgs84A = 6378137.0
	wgs84F = 1.0 / 298.257223563

	utmScale        = 0.9996
	utmFalseEasting = 500000.0
	// Southern hemisphere false northing
	utmFalseNorthing = 10000000.0
)

// UTMZone returns the UTM zone number containing the given longitude
func UTMZone(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// projectUTM converts a lon/lat point (degrees) to UTM easting/northing in
// meters for the given zone. Uses the standard transverse Mercator series
// expansion on the WGS84 ellipsoid.
func projectUTM(lon, lat float64, zone int, south bool) (x, y float64) {
	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)

	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180
	lon0 := (float64(zone-1)*6 - 180 + 3) * math.Pi / 180

	sinLat := math.Sin(latRad)
	cosLat := math.Cos(latRad)
	tanLat := math.Tan(latRad)

	n := wgs84A / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := ep2 * cosLat * cosLat
	a := cosLat * (lonRad - lon0)

	// Meridional arc length
	m := wgs84A * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*latRad -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*latRad) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*latRad) -
		(35*e2*e2*e2/3072)*math.Sin(6*latRad))

	x = utmScale*n*(a+(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*ep2)*a*a*a*a*a/120) + utmFalseEasting

	y = utmScale * (m + n*tanLat*(a*a/2+
		(5-t+9*c+4*c*c)*a*a*a*a/24+
		(61-58*t+t*t+600*c-330*ep2)*a*a*a*a*a*a/720))

	if south {
		y += utmFalseNorthing
	}
	return x, y
}
