package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinatesDecimal(t *testing.T) {
	coord, ok := ParseCoordinates("-23.276064, -53.266292")
	require.True(t, ok)
	assert.InDelta(t, -23.276064, coord.Lat, 1e-9)
	assert.InDelta(t, -53.266292, coord.Lon, 1e-9)
}

func TestParseCoordinatesDecimalNoSpace(t *testing.T) {
	coord, ok := ParseCoordinates("-15.5,-47.8")
	require.True(t, ok)
	assert.InDelta(t, -15.5, coord.Lat, 1e-9)
	assert.InDelta(t, -47.8, coord.Lon, 1e-9)
}

func TestParseCoordinatesDMS(t *testing.T) {
	coord, ok := ParseCoordinates(`23°16'33.8"S 53°15'58.7"W`)
	require.True(t, ok)
	assert.InDelta(t, -23.2760556, coord.Lat, 1e-4)
	assert.InDelta(t, -53.2663056, coord.Lon, 1e-4)
}

func TestParseCoordinatesRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a coordinate", "12.3", "abc, def"} {
		_, ok := ParseCoordinates(input)
		assert.False(t, ok, "input %q should not parse", input)
	}
}

func TestParseMapsURLAtPath(t *testing.T) {
	coord, ok := ParseMapsURL("https://www.google.com/maps/@-23.276064,-53.266292,15z")
	require.True(t, ok)
	assert.InDelta(t, -23.276064, coord.Lat, 1e-9)
	assert.InDelta(t, -53.266292, coord.Lon, 1e-9)
}

func TestParseMapsURLQueryParam(t *testing.T) {
	coord, ok := ParseMapsURL("https://maps.google.com/?q=-15.793889,-47.882778")
	require.True(t, ok)
	assert.InDelta(t, -15.793889, coord.Lat, 1e-9)
	assert.InDelta(t, -47.882778, coord.Lon, 1e-9)
}

func TestParseMapsURLDataSegment(t *testing.T) {
	coord, ok := ParseMapsURL("https://www.google.com/maps/place/x/data=!3d-23.276064!4d-53.266292")
	require.True(t, ok)
	assert.InDelta(t, -23.276064, coord.Lat, 1e-9)
	assert.InDelta(t, -53.266292, coord.Lon, 1e-9)
}

func TestExtractCoordinates(t *testing.T) {
	coord, ok := ExtractCoordinates("https://www.google.com/maps/@-23.276064,-53.266292,15z")
	require.True(t, ok)
	assert.InDelta(t, -23.276064, coord.Lat, 1e-9)

	coord, ok = ExtractCoordinates("-23.276064, -53.266292")
	require.True(t, ok)
	assert.InDelta(t, -53.266292, coord.Lon, 1e-9)

	_, ok = ExtractCoordinates("somewhere in Brazil")
	assert.False(t, ok)
}
