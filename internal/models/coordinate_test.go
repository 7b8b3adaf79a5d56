package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinateValidate(t *testing.T) {
	assert.NoError(t, Coordinate{Lat: -23.276064, Lon: -53.266292}.Validate())
	assert.NoError(t, Coordinate{Lat: 90, Lon: 180}.Validate())
	assert.Error(t, Coordinate{Lat: -90.1, Lon: 0}.Validate())
	assert.Error(t, Coordinate{Lat: 0, Lon: 180.1}.Validate())
}

func TestCoordinateInBrazil(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"paraná", Coordinate{Lat: -23.276064, Lon: -53.266292}, true},
		{"manaus", Coordinate{Lat: -3.1, Lon: -60.0}, true},
		{"paris", Coordinate{Lat: 48.85, Lon: 2.35}, false},
		{"buenos aires", Coordinate{Lat: -34.6, Lon: -58.4}, false},
		{"mid atlantic", Coordinate{Lat: -10.0, Lon: -30.0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coord.InBrazil())
		})
	}
}

func TestCoordinateString(t *testing.T) {
	assert.Equal(t, "-23.276064, -53.266292", Coordinate{Lat: -23.276064, Lon: -53.266292}.String())
}
