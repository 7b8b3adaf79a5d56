package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/eroview/sicar-api/internal/config"
)

// RateLimiter throttles clients with per-IP token buckets. Each client gets
// two buckets: a general one for read traffic and a much smaller one for
// search starts, since every accepted search occupies the single browser
// pipeline for its whole duration.
type RateLimiter struct {
	config config.RateLimitConfig

	mu      sync.Mutex
	clients map[string]*clientBuckets
}

type clientBuckets struct {
	general  *rate.Limiter
	searches *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientBuckets),
	}
	go rl.cleanupClients()
	return rl
}

// Middleware limits all traffic from one client
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return rl.limit(rl.config.RequestsPerMinute, func(b *clientBuckets) *rate.Limiter {
		return b.general
	})
}

// SearchMiddleware limits search starts from one client. It runs on top of
// the general limit, not instead of it.
func (rl *RateLimiter) SearchMiddleware() gin.HandlerFunc {
	return rl.limit(rl.config.SearchesPerMinute, func(b *clientBuckets) *rate.Limiter {
		return b.searches
	})
}

func (rl *RateLimiter) limit(perMinute int, pick func(*clientBuckets) *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := pick(rl.buckets(c.ClientIP()))

		if !limiter.Allow() {
			retryAfter := retryAfter(perMinute)
			c.Header("X-RateLimit-Limit", strconv.Itoa(perMinute))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests, slow down",
				"retry_after": retryAfter.Seconds(),
				"timestamp":   time.Now(),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}

// buckets returns the client's buckets, creating them on first sight
func (rl *RateLimiter) buckets(clientID string) *clientBuckets {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[clientID]
	if !ok {
		b = &clientBuckets{
			general:  rate.NewLimiter(perMinuteLimit(rl.config.RequestsPerMinute), rl.config.BurstSize),
			searches: rate.NewLimiter(perMinuteLimit(rl.config.SearchesPerMinute), 1),
		}
		rl.clients[clientID] = b
	}
	b.lastSeen = time.Now()
	return b
}

func perMinuteLimit(perMinute int) rate.Limit {
	if perMinute <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(perMinute) / 60.0)
}

func retryAfter(perMinute int) time.Duration {
	if perMinute <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Minute)/float64(perMinute)) + time.Second
}

// cleanupClients drops buckets for clients not seen for two cleanup intervals
func (rl *RateLimiter) cleanupClients() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * interval)
		rl.mu.Lock()
		for clientID, b := range rl.clients {
			if b.lastSeen.Before(cutoff) {
				delete(rl.clients, clientID)
			}
		}
		rl.mu.Unlock()
	}
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"active_clients":      len(rl.clients),
		"requests_per_minute": rl.config.RequestsPerMinute,
		"searches_per_minute": rl.config.SearchesPerMinute,
		"burst_size":          rl.config.BurstSize,
	}
}
