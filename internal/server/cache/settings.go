// Package cache keeps a read-through, write-through copy of the settings
// singleton in Redis. Cache faults are logged and treated as misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// SettingsKey is the Redis key holding the JSON-encoded settings.
const SettingsKey = "journey:settings"

// Settings is the cache contract used by the settings service.
type Settings interface {
	Get(ctx context.Context) (*models.Settings, bool)
	Set(ctx context.Context, s *models.Settings)
}

// cachedSettings carries the fields the JSON model hides.
type cachedSettings struct {
	models.Settings
	UpdatedByID string `json:"updated_by_id,omitempty"`
}

type RedisSettings struct {
	client *redis.Client
	ttl    time.Duration
	log    logging.Logger
}

func NewRedisSettings(client *redis.Client, ttl time.Duration, log logging.Logger) *RedisSettings {
	return &RedisSettings{client: client, ttl: ttl, log: log}
}

func (c *RedisSettings) Get(ctx context.Context) (*models.Settings, bool) {
	raw, err := c.client.Get(ctx, SettingsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "settings cache read failed", "error", err)
		}
		return nil, false
	}

	var v cachedSettings
	if err := json.Unmarshal(raw, &v); err != nil {
		c.log.Warn(ctx, "settings cache entry corrupt", "error", err)
		return nil, false
	}
	s := v.Settings
	s.UpdatedByID = v.UpdatedByID
	return &s, true
}

// Set stores s. If the write fails the key is dropped so the next read goes
// to the database instead of serving the previous value.
func (c *RedisSettings) Set(ctx context.Context, s *models.Settings) {
	raw, err := json.Marshal(cachedSettings{Settings: *s, UpdatedByID: s.UpdatedByID})
	if err == nil {
		err = c.client.Set(ctx, SettingsKey, raw, c.ttl).Err()
	}
	if err != nil {
		c.log.Warn(ctx, "settings cache write failed", "error", err)
		if err := c.client.Del(ctx, SettingsKey).Err(); err != nil {
			c.log.Error(ctx, "settings cache invalidate failed", "error", err)
		}
	}
}

// Nop is the cache used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context) (*models.Settings, bool) { return nil, false }
func (Nop) Set(context.Context, *models.Settings)        {}
