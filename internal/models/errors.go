package models

import "errors"

var (
	// ErrOutsideBrazil means the coordinate falls outside the Brazil
	// bounding box or reverse-geocodes to another country
	ErrOutsideBrazil = errors.New("coordinate is outside Brazil")

	// ErrNoStateIdentified means reverse geocoding produced no usable
	// federative unit for the coordinate
	ErrNoStateIdentified = errors.New("no federative unit identified for coordinate")
)
