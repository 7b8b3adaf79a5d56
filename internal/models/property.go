package models

import "time"

// Property represents a rural property resolved from a coordinate.
// This is the canonical record: every caller uses these field names.
type Property struct {
	Found        bool       `json:"found" example:"true"`
	Name         string     `json:"property_name,omitempty" example:"Fazenda Santa Maria"`
	CARCode      string     `json:"car_code,omitempty" example:"PR-4107207-79A269BEFA1443F9B06F8B7470D9F239"`
	AreaHectares float64    `json:"area,omitempty" example:"128.5"`
	State        string     `json:"state,omitempty" example:"PR"`
	StateName    string     `json:"state_name,omitempty" example:"PARANÁ"`
	Municipality string     `json:"municipality,omitempty" example:"DOURADINA"`
	Coordinates  Coordinate `json:"coordinates"`
	MapFile      string     `json:"map_file,omitempty" example:"map_PR-4107207_20260830.png"`
	HasMap       bool       `json:"has_map"`
	Simulated    bool       `json:"simulated,omitempty"`
	ResolvedAt   time.Time  `json:"resolved_at"`
}

// Placemark is the administrative region resolved for a coordinate
type Placemark struct {
	State        string `json:"state" example:"PR"`
	StateName    string `json:"state_name" example:"PARANÁ"`
	Municipality string `json:"municipality" example:"DOURADINA"`
}
