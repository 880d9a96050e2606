package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKey        = "brandcert:dashboard:view"
	defaultCacheTTL = 30 * time.Second
)

// Cache holds a composed view briefly so dashboard refreshes do not hammer
// the record store. A miss is never an error.
type Cache interface {
	Get(ctx context.Context) (*View, bool, error)
	Set(ctx context.Context, view *View) error
}

// NopCache disables caching.
type NopCache struct{}

func (NopCache) Get(context.Context) (*View, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, *View) error         { return nil }

// RedisCache stores the serialized view under a single key with a short TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithTTL overrides how long a composed view stays fresh.
func WithTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	cache := &RedisCache{client: client, ttl: defaultCacheTTL}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func (c *RedisCache) Get(ctx context.Context) (*View, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("dashboard cache get: %w", err)
	}
	var view View
	if err := json.Unmarshal(raw, &view); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return nil, false, nil
	}
	return &view, true, nil
}

func (c *RedisCache) Set(ctx context.Context, view *View) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("dashboard cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("dashboard cache set: %w", err)
	}
	return nil
}
