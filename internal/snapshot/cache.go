package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"unify/internal/domain"
	platformredis "unify/internal/platform/redis"
)

const cacheKey = "unify:snapshot"

// Cache keeps the latest snapshot in Redis so dashboard polling does not
// hammer the store. All methods are safe on a nil cache; without Redis the
// snapshot is simply recomputed on every call.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client. Returns nil when the client is nil so the
// caller can wire it unconditionally.
func NewCache(client *platformredis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, if present and decodable.
func (c *Cache) Get(ctx context.Context) (domain.Snapshot, bool) {
	if c == nil {
		return domain.Snapshot{}, false
	}
	payload, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return domain.Snapshot{}, false
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.Snapshot{}, false
	}
	return snap, true
}

// Set stores the snapshot with the cache TTL. Best effort; failures mean the
// next read recomputes.
func (c *Cache) Set(ctx context.Context, snap domain.Snapshot) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey, payload, c.ttl).Err()
}
