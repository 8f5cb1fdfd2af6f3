// Package cache stores computed reports under an explicit invalidation contract.
// Every scope carries a generation counter. Invalidate bumps it, and readers embed
// the generation they observed before querying the store in every key they read or
// write, so an entry computed before an invalidation can never be served after it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Invalidator defines a cache invalidation contract.
type Invalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

// ReportCache stores serialized reports. Keys come from Key.
type ReportCache interface {
	Invalidator
	// Generation returns the current generation of scope, zero before the first invalidation.
	Generation(ctx context.Context, scope string) (int64, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key builds the entry key for suffix within scope at generation gen.
func Key(scope string, gen int64, suffix string) string {
	return fmt.Sprintf("%s:g%d:%s", scope, gen, suffix)
}

func generationKey(scope string) string {
	return scope + ":gen"
}

// NoopCache is a no-op implementation. Every lookup misses.
type NoopCache struct{}

// Get always misses.
func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set performs no action.
func (NoopCache) Set(context.Context, string, []byte) error { return nil }

// Invalidate performs no action.
func (NoopCache) Invalidate(context.Context, string) error { return nil }

// Generation is always zero.
func (NoopCache) Generation(context.Context, string) (int64, error) { return 0, nil }

const defaultTTL = 5 * time.Minute

// RedisCache keeps reports in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache constructs a RedisCache. Keys are namespaced by prefix.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, prefix: strings.TrimSuffix(prefix, ":"), ttl: ttl}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns the cached value for key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.SetEx(ctx, c.key(key), value, c.ttl).Err()
}

// Generation reads the scope counter. A missing counter is generation zero.
func (c *RedisCache) Generation(ctx context.Context, scope string) (int64, error) {
	gen, err := c.client.Get(ctx, c.key(generationKey(scope))).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate bumps the scope generation. Entries of older generations are never read
// again and age out with their TTL.
func (c *RedisCache) Invalidate(ctx context.Context, scope string) error {
	return c.client.Incr(ctx, c.key(generationKey(scope))).Err()
}

// Ping verifies connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
