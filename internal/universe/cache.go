package universe

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	sharedredis "cosmos-server/internal/shared/redis"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SnapshotCache is a read-through cache of universe snapshots keyed by
// id. It is purely an optimization: every method is a no-op when redis
// is disabled, and cache failures only cost a repository round trip.
type SnapshotCache struct {
	client *sharedredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewSnapshotCache(client *sharedredis.Client, ttl time.Duration, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *SnapshotCache) enabled() bool {
	return c != nil && c.client != nil && c.client.Client != nil
}

func cacheKey(id uuid.UUID) string {
	return "universe:" + id.String()
}

// Get returns the cached universe or nil on a miss.
func (c *SnapshotCache) Get(ctx context.Context, id uuid.UUID) *Universe {
	if !c.enabled() {
		return nil
	}

	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Snapshot cache read failed", "universe_id", id, "error", err)
		}
		return nil
	}

	var cached cachedUniverse
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("Snapshot cache entry corrupt, dropping", "universe_id", id, "error", err)
		c.Invalidate(ctx, id)
		return nil
	}

	u := cached.Universe
	u.RandomState = cached.RandomState
	return u
}

func (c *SnapshotCache) Set(ctx context.Context, u *Universe) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(cachedUniverse{Universe: u, RandomState: u.RandomState})
	if err != nil {
		c.logger.Warn("Failed to marshal universe for cache", "universe_id", u.ID, "error", err)
		return
	}

	if err := c.client.Set(ctx, cacheKey(u.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Snapshot cache write failed", "universe_id", u.ID, "error", err)
	}
}

func (c *SnapshotCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if !c.enabled() {
		return
	}

	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("Snapshot cache invalidation failed", "universe_id", id, "error", err)
	}
}

// cachedUniverse carries the random stream state alongside the public
// JSON shape, which deliberately omits it.
type cachedUniverse struct {
	Universe    *Universe `json:"universe"`
	RandomState uint32    `json:"random_state"`
}
