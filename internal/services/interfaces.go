package services

import (
	"context"

	"github.com/eroview/sicar-api/internal/models"
	"github.com/eroview/sicar-api/internal/search"
)

// ResolverInterface defines the interface for property resolvers
type ResolverInterface interface {
	// Resolve runs a full coordinate lookup, reporting progress as it goes
	Resolve(ctx context.Context, coord models.Coordinate, rep search.Reporter) (*models.Property, error)
}

// CacheServiceInterface defines the interface for cache service
type CacheServiceInterface interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value string) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear clears all cache entries
	Clear(ctx context.Context) error

	// Stats returns cache counters
	Stats() models.CacheMetrics

	// Health returns cache service health status
	Health() map[string]interface{}
}

// GeocodeServiceInterface defines the interface for reverse geocoding
type GeocodeServiceInterface interface {
	// Reverse resolves a coordinate to its state and municipality
	Reverse(ctx context.Context, coord models.Coordinate) (*models.Placemark, error)
}

// BrowserServiceInterface defines the interface for browser service
type BrowserServiceInterface interface {
	// GetBrowser gets an available browser context
	GetBrowser(ctx context.Context) (BrowserContext, error)

	// ReleaseBrowser releases a browser context back to the pool
	ReleaseBrowser(browserCtx BrowserContext) error

	// Stats returns browser pool counters
	Stats() models.BrowserMetrics

	// Health returns browser service health status
	Health() map[string]interface{}

	// Restart restarts the browser pool
	Restart() error

	// Close closes all browsers and releases resources
	Close() error
}

// BrowserContext represents a browser context for automation
type BrowserContext interface {
	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// WaitForSelector waits for an element to appear
	WaitForSelector(ctx context.Context, selector string) error

	// Click clicks on an element
	Click(ctx context.Context, selector string) error

	// GetText gets text content from an element
	GetText(ctx context.Context, selector string) (string, error)

	// GetHTML gets HTML content from the page
	GetHTML(ctx context.Context) (string, error)

	// Screenshot takes a screenshot
	Screenshot(ctx context.Context) ([]byte, error)

	// ExecuteScript executes JavaScript
	ExecuteScript(ctx context.Context, script string) (interface{}, error)

	// Close closes the browser context
	Close() error

	// IsHealthy checks if the browser context is healthy
	IsHealthy() bool

	// GetID returns the browser context ID
	GetID() string
}
