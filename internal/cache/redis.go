// Package cache provides the Redis cache and rate-limit layer.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores users, donations and rate-limit buckets in Redis.
// Every key is namespaced by an optional prefix so several deployments
// can share one Redis database.
type Cache struct {
	client *redis.Client
	prefix string
}

// Option configures a Cache.
type Option func(*Cache, *redis.Options)

// WithKeyPrefix namespaces every key written by the cache.
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache, _ *redis.Options) {
		c.prefix = prefix
	}
}

// WithPoolSize overrides the connection pool size. It has no effect on
// NewWithClient.
func WithPoolSize(size int) Option {
	return func(_ *Cache, o *redis.Options) {
		if o != nil && size > 0 {
			o.PoolSize = size
		}
	}
}

// New connects to the Redis server at redisURL and verifies the connection.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	c := &Cache{}
	for _, o := range opts {
		o(c, opt)
	}
	c.client = redis.NewClient(opt)

	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return c, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, opts ...Option) *Cache {
	c := &Cache{client: client}
	for _, o := range opts {
		o(c, nil)
	}
	return c
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += p
	}
	return k
}

// getJSON loads key into v. It reports false on a miss, a Redis error or
// an entry that no longer decodes; callers fall back to the store.
func (c *Cache) getJSON(ctx context.Context, key string, v any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
