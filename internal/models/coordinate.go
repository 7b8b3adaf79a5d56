package models

import "fmt"

// Brazil bounding box used for coarse coordinate validation.
const (
	BrazilMinLat = -33.0
	BrazilMaxLat = 5.0
	BrazilMinLon = -73.0
	BrazilMaxLon = -35.0
)

// Coordinate represents a geographic point in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat" example:"-23.276064"`
	Lon float64 `json:"lon" example:"-53.266292"`
}

// Validate checks that the coordinate is a valid geographic point
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// InBrazil reports whether the coordinate falls inside the Brazil bounding box
func (c Coordinate) InBrazil() bool {
	return c.Lat > BrazilMinLat && c.Lat < BrazilMaxLat &&
		c.Lon > BrazilMinLon && c.Lon < BrazilMaxLon
}

// String formats the coordinate as "lat, lon"
func (c Coordinate) String() string {
	return fmt.Sprintf("%f, %f", c.Lat, c.Lon)
}
