package registry

import (
	"context"
	"errors"
	"time"

	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Cache keeps raw registry detail bodies. Failures are never fatal, a miss is always safe.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NopCache) Set(context.Context, string, []byte) {}

const redisKeyPrefix = "certzone:registry:"

type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warnf(ctx, "registry cache get %s: %s", key, err.Error())
		}
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, redisKeyPrefix+key, body, c.ttl).Err(); err != nil {
		logger.Warnf(ctx, "registry cache set %s: %s", key, err.Error())
	}
}
