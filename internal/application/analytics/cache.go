package analytics

import (
	"context"
	"time"
)

// Cache is a read-through cache for analytics responses. Get reports
// whether the key was present; a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// NopCache is a Cache that never hits. It stands in when no cache
// backend is configured.
type NopCache struct{}

// Get always misses
func (NopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

// Set discards the value
func (NopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

// Invalidate does nothing
func (NopCache) Invalidate(ctx context.Context, pattern string) error {
	return nil
}
