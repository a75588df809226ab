package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/library/backend/internal/application/analytics"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisAnalyticsCache implements the analytics Cache port using Redis.
// Suitable for distributed deployments where multiple instances serve
// the same analytics queries.
type RedisAnalyticsCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisAnalyticsCache creates a Redis-backed analytics cache
func NewRedisAnalyticsCache(cfg *config.RedisConfig, logger *zap.Logger) (*RedisAnalyticsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAnalyticsCache{client: client, logger: logger}, nil
}

// NewRedisAnalyticsCacheWithClient creates a cache with an existing
// Redis client. Useful for testing or when sharing a client.
func NewRedisAnalyticsCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisAnalyticsCache {
	return &RedisAnalyticsCache{client: client, logger: logger}
}

// Get loads the cached value for key into dest. Returns false on a miss.
func (c *RedisAnalyticsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache read failed: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// A corrupt entry is treated as a miss so the caller recomputes
		c.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Set stores value under key with the given TTL
func (c *RedisAnalyticsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Invalidate removes every key matching the pattern
func (c *RedisAnalyticsCache) Invalidate(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache invalidation failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan failed: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection, used by health checks
func (c *RedisAnalyticsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisAnalyticsCache) Close() error {
	return c.client.Close()
}

var _ analytics.Cache = (*RedisAnalyticsCache)(nil)
