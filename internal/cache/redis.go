package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/guttosm/spimexpulse/internal/logger"
)

// Boundary is the daily wall-clock instant at which every cached entry goes stale.
type Boundary struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Next returns the first boundary instant strictly after now.
func (b Boundary) Next(now time.Time) time.Time {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), b.Hour, b.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, b.Hour, b.Minute, 0, 0, loc)
	}
	return next
}

// RedisCache stores JSON values in Redis until the next freshness boundary.
type RedisCache struct {
	client   *redis.Client
	boundary Boundary
	now      func() time.Time
	log      zerolog.Logger
}

// NewRedisCache connects to the Redis server at url and verifies the connection.
func NewRedisCache(ctx context.Context, url string, boundary Boundary) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisCacheFromClient(client, boundary), nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client, boundary Boundary) *RedisCache {
	return &RedisCache{
		client:   client,
		boundary: boundary,
		now:      time.Now,
		log:      logger.Component("cache"),
	}
}

// Get decodes the value stored under key into dest. It reports false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key until the next boundary.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	now := c.now()
	ttl := c.boundary.Next(now).Sub(now)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Clear drops every entry of the selected Redis database.
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	c.log.Info().Msg("cache cleared")
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
