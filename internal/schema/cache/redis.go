// Package cache holds the field definitions snapshot in Redis so every
// instance serves schema reads without hitting the store, and a registry
// mutation on one instance is visible to all of them on the next read.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"siteguard/internal/schema/models"
)

const (
	// Redis key for the serialized definitions snapshot
	definitionsKey = "schema:definitions:v1"

	// DefaultTTL bounds staleness when an invalidation is lost.
	DefaultTTL = 5 * time.Minute
)

// RedisCache is a Redis-backed definitions snapshot cache. All methods
// degrade gracefully: infrastructure errors are logged and reported as a
// miss, never returned, so a Redis outage slows schema reads but does not
// fail them.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Option configures a RedisCache instance.
type Option func(*RedisCache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedis constructs a Redis-backed definitions cache.
func NewRedis(client *redis.Client, opts ...Option) *RedisCache {
	c := &RedisCache{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the cached snapshot, reporting false on a miss or any
// infrastructure failure.
func (c *RedisCache) Get(ctx context.Context) ([]*models.FieldDefinition, bool) {
	raw, err := c.client.Get(ctx, definitionsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.warn(ctx, "definitions cache read failed", err)
		return nil, false
	}

	var defs []*models.FieldDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		// A corrupt snapshot self-heals: drop it and fall through to the store.
		c.warn(ctx, "definitions cache payload corrupt", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return defs, true
}

// Set stores the snapshot with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, defs []*models.FieldDefinition) {
	raw, err := json.Marshal(defs)
	if err != nil {
		c.warn(ctx, "definitions cache encode failed", err)
		return
	}
	if err := c.client.Set(ctx, definitionsKey, raw, c.ttl).Err(); err != nil {
		c.warn(ctx, "definitions cache write failed", err)
	}
}

// Invalidate drops the snapshot after a registry mutation.
func (c *RedisCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, definitionsKey).Err(); err != nil {
		c.warn(ctx, "definitions cache invalidation failed", err)
	}
}

func (c *RedisCache) warn(ctx context.Context, msg string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "error", err)
	}
}
