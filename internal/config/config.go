package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server"`
	Redis    RedisConfig    `json:"redis"`
	Sicar    SicarConfig    `json:"sicar"`
	Geocoder GeocoderConfig `json:"geocoder"`
	Storage  StorageConfig  `json:"storage"`
	Log      LogConfig      `json:"log"`
	Security SecurityConfig `json:"security"`
	Browser  BrowserConfig  `json:"browser"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// SicarConfig holds SICAR portal automation configuration
type SicarConfig struct {
	Mode          string        `json:"mode"`
	PortalURL     string        `json:"portal_url"`
	SearchTimeout time.Duration `json:"search_timeout"`
	MaxNavRetries int           `json:"max_nav_retries"`
	MapsDir       string        `json:"maps_dir"`
	CacheTTL      time.Duration `json:"cache_ttl"`
}

// GeocoderConfig holds reverse geocoding configuration
type GeocoderConfig struct {
	BaseURL           string  `json:"base_url"`
	IBGEBaseURL       string  `json:"ibge_base_url"`
	UserAgent         string  `json:"user_agent"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// StorageConfig holds search history storage configuration
type StorageConfig struct {
	Path string `json:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
	// AdminToken guards destructive admin endpoints; empty disables them
	AdminToken string `json:"-"`
}

// RateLimitConfig holds rate limiting configuration. Search starts each
// occupy a browser session, so they carry their own, much lower budget.
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	SearchesPerMinute int           `json:"searches_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	MinBrowsers        int           `json:"min_browsers"`
	MaxBrowsers        int           `json:"max_browsers"`
	MaxPagesPerBrowser int           `json:"max_pages_per_browser"`
	BrowserTimeout     time.Duration `json:"browser_timeout"`
	PageTimeout        time.Duration `json:"page_timeout"`
	IdleTimeout        time.Duration `json:"idle_timeout"`
	Headless           bool          `json:"headless"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 8080),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("IDLE_TIMEOUT", 60),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  time.Duration(getEnvAsInt("REDIS_DIAL_TIMEOUT", 5)) * time.Second,
			ReadTimeout:  time.Duration(getEnvAsInt("REDIS_READ_TIMEOUT", 3)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("REDIS_WRITE_TIMEOUT", 3)) * time.Second,
		},
		Sicar: SicarConfig{
			Mode:          getEnv("SICAR_MODE", "simulated"),
			PortalURL:     getEnv("SICAR_PORTAL_URL", "https://consultapublica.car.gov.br/publico/imoveis/index"),
			SearchTimeout: time.Duration(getEnvAsInt("SICAR_SEARCH_TIMEOUT", 300)) * time.Second,
			MaxNavRetries: getEnvAsInt("SICAR_MAX_NAV_RETRIES", 3),
			MapsDir:       getEnv("SICAR_MAPS_DIR", "static/maps"),
			CacheTTL:      time.Duration(getEnvAsInt("SICAR_CACHE_TTL", 3600)) * time.Second,
		},
		Geocoder: GeocoderConfig{
			BaseURL:           getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			IBGEBaseURL:       getEnv("IBGE_BASE_URL", "https://servicodados.ibge.gov.br/api/v1/localidades"),
			UserAgent:         getEnv("GEOCODER_USER_AGENT", "SicarAPI/1.0 (property lookup service)"),
			RequestsPerSecond: getEnvAsFloat("GEOCODER_RPS", 1.0),
		},
		Storage: StorageConfig{
			Path: getEnv("STORAGE_PATH", "data/searches.db"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 100),
				SearchesPerMinute: getEnvAsInt("RATE_LIMIT_SEARCHES_PER_MINUTE", 6),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
				CleanupInterval:   time.Duration(getEnvAsInt("RATE_LIMIT_CLEANUP", 60)) * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
			},
			AdminToken: getEnv("ADMIN_TOKEN", ""),
		},
		Browser: BrowserConfig{
			MinBrowsers:        getEnvAsInt("BROWSER_MIN", 1),
			MaxBrowsers:        getEnvAsInt("BROWSER_MAX", 5),
			MaxPagesPerBrowser: getEnvAsInt("BROWSER_MAX_PAGES", 3),
			BrowserTimeout:     time.Duration(getEnvAsInt("BROWSER_TIMEOUT", 60)) * time.Second,
			PageTimeout:        time.Duration(getEnvAsInt("PAGE_TIMEOUT", 30)) * time.Second,
			IdleTimeout:        time.Duration(getEnvAsInt("BROWSER_IDLE_TIMEOUT", 300)) * time.Second,
			Headless:           getEnvAsBool("BROWSER_HEADLESS", true),
		},
	}

	// Validate required fields
	if cfg.Sicar.Mode != "live" && cfg.Sicar.Mode != "simulated" {
		return nil, fmt.Errorf("SICAR_MODE must be \"live\" or \"simulated\", got %q", cfg.Sicar.Mode)
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
