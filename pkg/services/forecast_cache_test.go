package services

import (
	"context"
	"testing"
	"time"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (ForecastCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewForecastCache(config.CacheConfig{
		Enabled:    true,
		RedisAddr:  mr.Addr(),
		TTLSeconds: 60,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestForecastCacheScoreRoundTrip(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	q, err := forecast.NewQuery("Urea", "Monsoon", "Rainy")
	require.NoError(t, err)

	_, ok, err := cache.GetScore(ctx, q)
	require.NoError(t, err)
	assert.False(t, ok)

	result, err := forecast.NewEngine(catalog.Default()).Score(q)
	require.NoError(t, err)
	require.NoError(t, cache.SetScore(ctx, q, result))

	got, ok, err := cache.GetScore(ctx, q)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result, *got)

	assert.Equal(t, 60*time.Second, mr.TTL(buildScoreKey(q)))
}

func TestForecastCacheSweepRoundTrip(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()

	report, err := forecast.NewEngine(catalog.Default()).Sweep(catalog.Summer, catalog.Hot)
	require.NoError(t, err)
	require.NoError(t, cache.SetSweep(ctx, report))

	got, ok, err := cache.GetSweep(ctx, "Summer", "Hot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report.Rankings, got.Rankings)
	assert.Equal(t, catalog.Summer, got.Season)

	_, ok, err = cache.GetSweep(ctx, "Winter", "Hot")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestForecastCacheInvalidateAll(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	q, err := forecast.NewQuery("DAP", "Winter", "Dry")
	require.NoError(t, err)
	require.NoError(t, cache.SetScore(ctx, q, forecast.DemandResult{Product: "DAP", FinalScore: 70}))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, cache.InvalidateAll(ctx))

	_, ok, err := cache.GetScore(ctx, q)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestForecastCacheCorruptEntry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	require.NoError(t, mr.Set(buildSweepKey("Summer", "Hot"), "{not json"))

	_, ok, err := cache.GetSweep(context.Background(), "Summer", "Hot")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewForecastCacheDisabled(t *testing.T) {
	cache, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, &noopForecastCache{}, cache)

	_, ok, err := cache.GetSweep(context.Background(), "Summer", "Hot")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestNewForecastCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewForecastCache(config.CacheConfig{Enabled: true, RedisAddr: addr})
	assert.Error(t, err)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@example.com:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "example.com:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "::bad"})
	assert.Error(t, err)
}
