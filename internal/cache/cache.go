// Package cache provides an optional Redis-backed cache for computed insight views.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 60 * time.Second

const keyPrefix = "ghosthawk"

// Cache stores JSON-encoded views under a short key.
type Cache interface {
	// Get decodes the cached value for key into dest. The bool reports a hit;
	// a miss is not an error.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL and returns a Cache.
// URL format: redis://localhost:6379/0
func New(redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

// Get retrieves and decodes a cached view.
func (c *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores a view with the configured TTL.
func (c *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal error: %w", err)
	}
	return c.client.Set(ctx, buildKey(key), data, c.ttl).Err()
}

// TTL returns the expiry applied to every entry.
func (c *Redis) TTL() time.Duration {
	return c.ttl
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Noop never stores anything; every Get misses.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, any) error { return nil }

func buildKey(key string) string {
	return keyPrefix + ":" + strings.ToLower(strings.TrimSpace(key))
}
