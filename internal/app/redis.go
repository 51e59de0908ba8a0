package app

import (
	"context"

	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/cache"
)

// CacheBoundary converts the configured reset time into a cache freshness boundary.
func CacheBoundary(cfg config.Config) cache.Boundary {
	return cache.Boundary{
		Hour:     cfg.Cache.ResetHour,
		Minute:   cfg.Cache.ResetMinute,
		Location: cfg.Cache.Location(),
	}
}

// InitRedis connects the query cache to cfg.Redis.URL.
func InitRedis(ctx context.Context, cfg config.Config) (*cache.RedisCache, error) {
	return cache.NewRedisCache(ctx, cfg.Redis.URL, CacheBoundary(cfg))
}

// redisOpener is an indirection used by InitializeApp; overridden in tests.
var redisOpener = InitRedis
