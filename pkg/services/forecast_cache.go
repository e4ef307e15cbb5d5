package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/forecast"

	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix  = "forecast"
	scanBatchSize      = 100
	defaultForecastTTL = 5 * time.Minute
)

// ForecastCache はスコア計算結果のキャッシュです。信頼度はキャッシュしません。
type ForecastCache interface {
	GetScore(ctx context.Context, q forecast.Query) (*forecast.DemandResult, bool, error)
	SetScore(ctx context.Context, q forecast.Query, result forecast.DemandResult) error
	GetSweep(ctx context.Context, season, weather string) (*forecast.SweepReport, bool, error)
	SetSweep(ctx context.Context, report *forecast.SweepReport) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache returns a redis backed cache, or a noop cache when caching
// is disabled.
func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultForecastTTL
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetScore(ctx context.Context, q forecast.Query) (*forecast.DemandResult, bool, error) {
	var result forecast.DemandResult
	ok, err := c.get(ctx, buildScoreKey(q), &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisForecastCache) SetScore(ctx context.Context, q forecast.Query, result forecast.DemandResult) error {
	return c.set(ctx, buildScoreKey(q), result)
}

func (c *redisForecastCache) GetSweep(ctx context.Context, season, weather string) (*forecast.SweepReport, bool, error) {
	var report forecast.SweepReport
	ok, err := c.get(ctx, buildSweepKey(season, weather), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisForecastCache) SetSweep(ctx context.Context, report *forecast.SweepReport) error {
	return c.set(ctx, buildSweepKey(report.Season.String(), report.Weather.String()), report)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, forecastKeyPrefix+":*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (c *redisForecastCache) Close() error {
	return c.client.Close()
}

func (c *redisForecastCache) get(ctx context.Context, key string, dst any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode forecast cache %s: %w", key, err)
	}
	return true, nil
}

func (c *redisForecastCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode forecast cache %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopForecastCache) GetScore(ctx context.Context, q forecast.Query) (*forecast.DemandResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetScore(ctx context.Context, q forecast.Query, result forecast.DemandResult) error {
	return nil
}

func (n *noopForecastCache) GetSweep(ctx context.Context, season, weather string) (*forecast.SweepReport, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSweep(ctx context.Context, report *forecast.SweepReport) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopForecastCache) Close() error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	return &redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func buildSweepKey(season, weather string) string {
	return fmt.Sprintf("%s:sweep:%s:%s", forecastKeyPrefix, season, weather)
}

func buildScoreKey(q forecast.Query) string {
	raw := q.Product + "|" + q.Season.String() + "|" + q.Weather.String()
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:score:%s", forecastKeyPrefix, hex.EncodeToString(sum[:]))
}
