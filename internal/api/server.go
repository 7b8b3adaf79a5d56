package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/eroview/sicar-api/internal/api/handlers"
	"github.com/eroview/sicar-api/internal/api/middleware"
	"github.com/eroview/sicar-api/internal/config"
	"github.com/eroview/sicar-api/internal/services"
)

// Server represents the HTTP server
type Server struct {
	Router   *gin.Engine
	config   *config.Config
	logger   *logrus.Logger
	services *services.Container
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	s.Router = gin.New()

	// Global middleware
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())
	s.Router.Use(middleware.RequestID())

	rateLimiter := middleware.NewRateLimiter(s.config.Security.RateLimit)
	s.Router.Use(rateLimiter.Middleware())

	healthHandler := handlers.NewHealthHandler(s.services, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)

	metricsHandler := handlers.NewMetricsHandler(s.services, s.services.SearchManager, s.logger)
	s.Router.GET("/metrics", metricsHandler.GetMetrics)

	// Swagger documentation
	if s.config.Server.Environment != "production" {
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		s.Router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})
	}

	searchHandler := handlers.NewSearchHandler(s.services.SearchManager, s.logger)
	mapsHandler := handlers.NewMapsHandler(s.config.Sicar.MapsDir, s.logger)
	boundaryHandler := handlers.NewBoundaryHandler(s.config.Sicar.MapsDir, s.logger)
	configHandler := handlers.NewConfigHandler(s.config)
	historyHandler := handlers.NewHistoryHandler(s.services.Store, s.logger)

	// Legacy single-search routes kept for existing clients
	s.Router.POST("/iniciar", rateLimiter.SearchMiddleware(), searchHandler.StartLegacy)
	s.Router.POST("/cancelar", searchHandler.CancelLegacy)
	s.Router.GET("/status", searchHandler.StatusLegacy)
	s.Router.GET("/resultado", searchHandler.ResultLegacy)
	s.Router.GET("/maps/:filename", mapsHandler.GetMap)
	s.Router.GET("/config", configHandler.GetConfig)

	// Root-level search routes
	sicar := s.Router.Group("/sicar")
	{
		sicar.POST("/search", rateLimiter.SearchMiddleware(), searchHandler.Start)
		sicar.GET("/status/:id", searchHandler.Status)
		sicar.POST("/cancel/:id", searchHandler.Cancel)
		sicar.GET("/map/:filename", mapsHandler.GetMap)
		sicar.GET("/boundary/:filename", boundaryHandler.GetStatistics)
	}

	// API v1 routes
	v1 := s.Router.Group("/api/v1")
	{
		sicarV1 := v1.Group("/sicar")
		{
			sicarV1.POST("/search", rateLimiter.SearchMiddleware(), searchHandler.Start)
			sicarV1.GET("/status/:id", searchHandler.Status)
			sicarV1.POST("/cancel/:id", searchHandler.Cancel)
			sicarV1.GET("/map/:filename", mapsHandler.GetMap)
			sicarV1.GET("/boundary/:filename", boundaryHandler.GetStatistics)
		}

		searches := v1.Group("/searches")
		{
			searches.GET("", historyHandler.List)
			searches.GET("/:id", historyHandler.Get)
		}

		cache := v1.Group("/cache")
		{
			cacheHandler := handlers.NewCacheHandler(s.services.CacheService, s.logger)
			cache.GET("/stats", cacheHandler.GetStats)
			cache.DELETE("/clear", middleware.AdminAuth(s.config.Security.AdminToken), cacheHandler.Clear)
			cache.DELETE("/coordinate", middleware.AdminAuth(s.config.Security.AdminToken), cacheHandler.Delete)
		}

		if s.services.BrowserService != nil {
			browser := v1.Group("/browser")
			{
				browserHandler := handlers.NewBrowserHandler(s.services.BrowserService, s.logger)
				browser.GET("/stats", browserHandler.GetStats)
				browser.POST("/restart", middleware.AdminAuth(s.config.Security.AdminToken), browserHandler.Restart)
				browser.GET("/health", browserHandler.GetHealth)
			}
		}
	}

	// 404 handler
	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not Found",
			"message":   "The requested resource was not found",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
		})
	})

	// 405 handler
	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":     "Method Not Allowed",
			"message":   "The requested method is not allowed for this resource",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		})
	})
}
