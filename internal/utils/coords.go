package utils

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/eroview/sicar-api/internal/models"
)

var (
	decimalPairRe = regexp.MustCompile(`^(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)$`)
	dmsPairRe     = regexp.MustCompile(`^(\d+)°(\d+)'(\d+\.?\d*)"([NS])\s*(\d+)°(\d+)'(\d+\.?\d*)"([EW])$`)

	// Coordinate pair embedded in a URL path or fragment: "@-23.27,-53.26" or "/-23.27,-53.26"
	urlPairRe = regexp.MustCompile(`[/@](-?\d+\.\d+),(-?\d+\.\d+)`)
	// Coordinate pair in a query parameter value, optionally prefixed with "loc:"
	paramPairRe = regexp.MustCompile(`(?:loc:)?(-?\d+\.\d+)\s*,\s*(-?\d+\.\d+)`)
	// Embedded !3d<lat>!4d<lon> data segment
	dataPairRe = regexp.MustCompile(`!3d(-?\d+\.\d+)!4d(-?\d+\.\d+)`)
)

// ParseCoordinates parses a coordinate string in decimal ("-23.276064, -53.266292")
// or DMS (`23°16'33.8"S 53°15'58.7"W`) notation. Malformed input returns ok=false.
func ParseCoordinates(input string) (models.Coordinate, bool) {
	input = strings.TrimSpace(input)

	if m := decimalPairRe.FindStringSubmatch(input); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lon, errLon := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLon != nil {
			return models.Coordinate{}, false
		}
		return models.Coordinate{Lat: lat, Lon: lon}, true
	}

	if m := dmsPairRe.FindStringSubmatch(input); m != nil {
		lat, ok1 := dmsToDecimal(m[1], m[2], m[3])
		lon, ok2 := dmsToDecimal(m[5], m[6], m[7])
		if !ok1 || !ok2 {
			return models.Coordinate{}, false
		}
		if m[4] == "S" {
			lat = -lat
		}
		if m[8] == "W" {
			lon = -lon
		}
		return models.Coordinate{Lat: lat, Lon: lon}, true
	}

	return models.Coordinate{}, false
}

func dmsToDecimal(deg, min, sec string) (float64, bool) {
	d, err1 := strconv.ParseFloat(deg, 64)
	m, err2 := strconv.ParseFloat(min, 64)
	s, err3 := strconv.ParseFloat(sec, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return d + m/60 + s/3600, true
}

// ParseMapsURL extracts a coordinate pair from a Google Maps URL. It tries, in
// order: the path/fragment "@lat,lon" pattern, the well-known query parameters,
// the "!3d...!4d..." data segment, and finally any bare pair anywhere in the URL.
func ParseMapsURL(rawURL string) (models.Coordinate, bool) {
	if m := urlPairRe.FindStringSubmatch(rawURL); m != nil {
		return pairFromStrings(m[1], m[2])
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		if parsed.Fragment != "" {
			if m := urlPairRe.FindStringSubmatch(parsed.Fragment); m != nil {
				return pairFromStrings(m[1], m[2])
			}
		}

		query := parsed.Query()
		for _, param := range []string{"ll", "sll", "center", "q", "daddr", "saddr"} {
			if value := query.Get(param); value != "" {
				if m := paramPairRe.FindStringSubmatch(value); m != nil {
					return pairFromStrings(m[1], m[2])
				}
			}
		}
	}

	if m := dataPairRe.FindStringSubmatch(rawURL); m != nil {
		return pairFromStrings(m[1], m[2])
	}

	if m := paramPairRe.FindStringSubmatch(rawURL); m != nil {
		return pairFromStrings(m[1], m[2])
	}

	return models.Coordinate{}, false
}

// ExtractCoordinates resolves a free-form location input: a direct coordinate
// string first, then a Maps URL when the input looks like one.
func ExtractCoordinates(input string) (models.Coordinate, bool) {
	if coord, ok := ParseCoordinates(input); ok {
		return coord, true
	}

	lower := strings.ToLower(input)
	if strings.Contains(lower, "maps.google") || strings.Contains(lower, "google.com/maps") ||
		strings.Contains(lower, "goo.gl") || strings.Contains(lower, "maps.app") {
		return ParseMapsURL(input)
	}

	return models.Coordinate{}, false
}

func pairFromStrings(latStr, lonStr string) (models.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lon, err2 := strconv.ParseFloat(lonStr, 64)
	if err1 != nil || err2 != nil {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Lat: lat, Lon: lon}, true
}
