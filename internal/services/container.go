package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eroview/sicar-api/internal/config"
	"github.com/eroview/sicar-api/internal/search"
	"github.com/eroview/sicar-api/internal/store"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client

	CacheService   CacheServiceInterface
	BrowserService BrowserServiceInterface
	GeocodeService GeocodeServiceInterface
	Resolver       ResolverInterface
	Store          *store.Store
	SearchManager  *search.Manager
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initRedis(); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	if err := container.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return container, nil
}

// initRedis initializes Redis client
func (c *Container) initRedis() error {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Redis connection failed, running without cache")
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}

	return nil
}

// initServices initializes all services
func (c *Container) initServices() error {
	cacheService := NewCacheService(c.redisClient, c.config.Sicar.CacheTTL, c.logger)
	cacheService.StartCleanupRoutine()
	c.CacheService = cacheService

	c.GeocodeService = NewGeocodeService(c.config.Geocoder, c.CacheService, c.logger)

	if dir := filepath.Dir(c.config.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	searchStore, err := store.Open(c.config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open search store: %w", err)
	}
	c.Store = searchStore

	switch c.config.Sicar.Mode {
	case "live":
		browserService, err := NewBrowserService(c.config.Browser, c.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize browser service: %w", err)
		}
		c.BrowserService = browserService
		c.Resolver = NewSicarResolver(c.config.Sicar, c.BrowserService, c.GeocodeService, c.CacheService, c.logger)
		c.logger.Info("Running against the live SICAR portal")
	default:
		c.Resolver = NewSimulatedConnector(c.config.Sicar, c.logger)
		c.logger.Info("Running with the simulated SICAR connector")
	}

	c.SearchManager = search.NewManager(c.Resolver, c.Store, c.config.Sicar.SearchTimeout, c.logger)
	return nil
}

// Close closes all service connections
func (c *Container) Close() error {
	var errs []error

	if c.SearchManager != nil {
		c.SearchManager.Close()
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	if c.BrowserService != nil {
		if err := c.BrowserService.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser service: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close search store: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.redisClient != nil {
		ctx := context.Background()
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.BrowserService != nil {
		health["browser"] = c.BrowserService.Health()
	} else {
		health["browser"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Store.Ping(ctx); err != nil {
			health["storage"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["storage"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	}

	return health
}

// GetRedisClient returns the Redis client
func (c *Container) GetRedisClient() *redis.Client {
	return c.redisClient
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
