package feedcache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/ravenlane/compo/internal/config"
)

// Module wires the redis client and feed cache.
var Module = fx.Options(
	fx.Provide(newRedisClient, newCache),
	fx.Invoke(registerLifecycle),
)

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddress,
	})
}

type cacheParams struct {
	fx.In

	Client *redis.Client
	Config *config.Config
	Logger *slog.Logger
}

func newCache(p cacheParams) *Cache {
	return New(p.Client, p.Config.FeedCacheTTL, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, client *redis.Client) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
