package feedcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// HomeFeedKey is the cache entry for the public home feed.
const HomeFeedKey = "feed:home"

// Cache is the explicit TTL cache in front of the content feed. Entries
// expire on their own and are busted manually after admin mutations.
// Redis being unreachable degrades to cache misses, never to request
// failures.
type Cache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// New constructs the cache around an established redis client.
func New(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("feed cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return value, true
}

// Set stores the value under the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("feed cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Bust removes the entry; the next read repopulates it.
func (c *Cache) Bust(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
