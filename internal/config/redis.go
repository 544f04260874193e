package config

// Redis backs the session-listing cache.  If no address is configured or the
// server is unreachable at startup, NewRedisClient returns nil and the cache
// degrades to a no-op.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the loaded configuration.
// The returned client may be nil when Redis is not configured or cannot be
// reached; callers must treat nil as "caching disabled".
func NewRedisClient(cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	// Ping with a short timeout; degrade rather than fail startup.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
