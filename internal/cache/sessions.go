// Package cache holds a Redis-backed cache of audience session listings.
// The listing is the one hot read path in the system (every registration
// form load hits it) and its occupancy annotations require aggregate scans,
// so short-lived caching pays for itself.  Every write that can change a
// listing invalidates the whole cache.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openhall/session-registration/internal/service"
)

const keyPrefix = "sessions:"

// SessionListCache caches ListFor results keyed by audience.  All methods
// are safe on a nil receiver or nil client and degrade to cache misses, so
// callers never branch on whether Redis is configured.
type SessionListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionListCache wraps a Redis client.  rdb may be nil.
func NewSessionListCache(rdb *redis.Client, ttl time.Duration) *SessionListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SessionListCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached listing for an audience, if present and decodable.
func (c *SessionListCache) Get(ctx context.Context, audience string) ([]service.SessionAvailability, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+audience).Bytes()
	if err != nil {
		return nil, false
	}
	var items []service.SessionAvailability
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Set stores a listing under its audience key.  Failures are ignored; the
// next reader recomputes.
func (c *SessionListCache) Set(ctx context.Context, audience string, items []service.SessionAvailability) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, keyPrefix+audience, raw, c.ttl).Err()
}

// Invalidate drops every cached listing.  Called after any admission or
// directory write.
func (c *SessionListCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := []string{keyPrefix + "general", keyPrefix + "member"}
	_ = c.rdb.Del(ctx, keys...).Err()
}
