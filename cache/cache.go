package cache

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// Backend is the key/value storage under the local mirror. Get returns an
// empty string for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var errNoRedis = errors.New("Redis client is not initialized")

// RedisCache keeps mirror collections in Redis without expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new RedisCache instance, ensuring that the client is
// not nil.
func NewRedisCache(client *redis.Client, prefix string) (*RedisCache, error) {
	if client == nil {
		return nil, errNoRedis
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.client == nil {
		return errNoRedis
	}
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if c.client == nil {
		return errNoRedis
	}
	return c.client.Set(ctx, c.prefix+key, value, 0).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", errNoRedis
	}
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return "", nil // key does not exist
	}
	return val, err
}

// Close is a no-op; the client is owned by whoever created it.
func (c *RedisCache) Close() error { return nil }
