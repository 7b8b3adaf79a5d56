package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) *CacheService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewCacheService(nil, ttl, logger)
}

func TestCacheSetGetDelete(t *testing.T) {
	cache := newTestCache(time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, "sicar:-23.276064_-53.266292")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "sicar:-23.276064_-53.266292", `{"found":true}`))
	val, err := cache.Get(ctx, "sicar:-23.276064_-53.266292")
	require.NoError(t, err)
	assert.Equal(t, `{"found":true}`, val)

	require.NoError(t, cache.Delete(ctx, "sicar:-23.276064_-53.266292"))
	_, err = cache.Get(ctx, "sicar:-23.276064_-53.266292")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheExpiry(t *testing.T) {
	cache := newTestCache(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "geo:-15.600000_-56.100000", "MT"))
	time.Sleep(50 * time.Millisecond)

	_, err := cache.Get(ctx, "geo:-15.600000_-56.100000")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheClear(t *testing.T) {
	cache := newTestCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1"))
	require.NoError(t, cache.Set(ctx, "b", "2"))
	require.NoError(t, cache.Clear(ctx))

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, cache.Stats().MemoryEntries)
}

func TestCacheStats(t *testing.T) {
	cache := newTestCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1"))
	_, _ = cache.Get(ctx, "a")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	assert.False(t, stats.RedisAvailable)
	assert.Equal(t, 1, stats.MemoryEntries)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
}

func TestCacheCleanupExpired(t *testing.T) {
	cache := newTestCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1"))
	time.Sleep(30 * time.Millisecond)
	cache.cleanupExpired()

	assert.Equal(t, 0, cache.Stats().MemoryEntries)
}

func TestCacheHealthWithoutRedis(t *testing.T) {
	cache := newTestCache(time.Minute)
	health := cache.Health()

	redisHealth, ok := health["redis"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "disabled", redisHealth["status"])
}
