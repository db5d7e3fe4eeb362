// Package preset caches the ordered preset catalog in Redis.
package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/media-editor/internal/config"
	"github.com/aliskhannn/media-editor/internal/model"
)

const key = "media:presets"

// Cache stores the whole catalog under one key.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, cfg *config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// New creates a Cache. A non-positive ttl keeps entries until invalidated.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}

	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached catalog. ok is false on a miss.
func (c *Cache) Get(ctx context.Context) ([]model.Preset, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get presets: %w", err)
	}

	var presets []model.Preset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return nil, false, fmt.Errorf("get presets: failed to decode: %w", err)
	}

	return presets, true, nil
}

// Set replaces the cached catalog.
func (c *Cache) Set(ctx context.Context, presets []model.Preset) error {
	raw, err := json.Marshal(presets)
	if err != nil {
		return fmt.Errorf("set presets: failed to encode: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set presets: %w", err)
	}

	return nil
}

// Invalidate drops the cached catalog.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate presets: %w", err)
	}

	return nil
}
