package models

import (
	"time"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Invalid coordinates"`
	Message   string    `json:"message" example:"Latitude and longitude must be numeric"`
	Code      string    `json:"code,omitempty" example:"INVALID_COORDINATES"`
	Timestamp time.Time `json:"timestamp" example:"2026-01-15T10:30:00Z"`
	Path      string    `json:"path" example:"/sicar/search"`
}

// SearchStartedResponse is returned when a search is accepted
type SearchStartedResponse struct {
	Success  bool   `json:"success" example:"true"`
	SearchID string `json:"search_id" example:"0b7e47cf-3c2a-4bb1-9b6e-5a2f1b0c9d3e"`
	Message  string `json:"message" example:"Busca iniciada com sucesso"`
	Progress int    `json:"progress,omitempty" example:"5"`
}

// OperationResponse is a generic success/message envelope
type OperationResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Busca cancelada com sucesso"`
}

// ResultResponse wraps a finished search result
type ResultResponse struct {
	Success bool      `json:"success" example:"true"`
	Result  *Property `json:"result"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2026-01-15T10:30:00Z"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]ServiceInfo `json:"services"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
}

// ServiceInfo represents individual service health
type ServiceInfo struct {
	Status    string    `json:"status" example:"healthy"`
	LastCheck time.Time `json:"last_check" example:"2026-01-15T10:30:00Z"`
	Error     string    `json:"error,omitempty"`
}

// MetricsResponse represents metrics response
type MetricsResponse struct {
	Searches  SearchMetrics  `json:"searches"`
	Cache     CacheMetrics   `json:"cache"`
	Browser   BrowserMetrics `json:"browser"`
	System    SystemMetrics  `json:"system"`
	Timestamp time.Time      `json:"timestamp" example:"2026-01-15T10:30:00Z"`
}

// SearchMetrics represents search counters
type SearchMetrics struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Canceled  int64 `json:"canceled"`
	Running   int   `json:"running"`
}

// CacheMetrics represents cache metrics
type CacheMetrics struct {
	RedisAvailable bool  `json:"redis_available"`
	MemoryEntries  int   `json:"memory_entries"`
	Hits           int64 `json:"hits"`
	Misses         int64 `json:"misses"`
}

// BrowserMetrics represents browser pool metrics
type BrowserMetrics struct {
	TotalBrowsers   int `json:"total_browsers"`
	HealthyBrowsers int `json:"healthy_browsers"`
	Available       int `json:"available"`
}

// SystemMetrics represents system metrics
type SystemMetrics struct {
	MemoryUsageMB float64 `json:"memory_usage_mb"`
	Goroutines    int     `json:"goroutines"`
}
