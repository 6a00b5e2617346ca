package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the token revocation store. Revoked token IDs live until the
// token would have expired anyway.
type Client interface {
	RevokeToken(tokenID string, ttl time.Duration) error
	IsTokenRevoked(tokenID string) (bool, error)
	Close() error
}

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisClient(redisURL string) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) RevokeToken(tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("auth:revoked:%s", tokenID)
	return c.rdb.Set(ctx, key, "1", ttl).Err()
}

func (c *RedisCache) IsTokenRevoked(tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("auth:revoked:%s", tokenID)
	_, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Noop is used when no Redis is configured; logout becomes a client-side
// token discard only.
type Noop struct{}

func (Noop) RevokeToken(string, time.Duration) error { return nil }
func (Noop) IsTokenRevoked(string) (bool, error)     { return false, nil }
func (Noop) Close() error                            { return nil }
