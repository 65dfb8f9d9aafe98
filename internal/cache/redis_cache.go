package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-go/internal/constants"
	"portfolio-go/internal/logger"
	"portfolio-go/internal/storage"
)

// RedisCache 多实例共享的响应缓存，过期由Redis负责
type RedisCache struct {
	redis *storage.Redis
	ttl   time.Duration
}

func NewRedisCache(redis *storage.Redis, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: redis, ttl: ttl}
}

func responseKey(key string) string {
	return fmt.Sprintf(constants.KeyResponseCache, key)
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.redis.Get(ctx, responseKey(key))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn().Err(err).Str("key", key).Msg("读取Redis响应缓存失败")
		}
		return nil, false
	}
	return []byte(val), true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if c.ttl <= 0 {
		return
	}
	if err := c.redis.Set(ctx, responseKey(key), string(value), c.ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("写入Redis响应缓存失败")
	}
}

func (c *RedisCache) Clear(ctx context.Context) {
	prefix := strings.TrimSuffix(constants.KeyResponseCache, "%s")
	n, err := c.redis.DeleteByPrefix(ctx, prefix)
	if err != nil {
		logger.Warn().Err(err).Msg("清空Redis响应缓存失败")
		return
	}
	logger.Debug().Int64("deleted", n).Msg("已清空Redis响应缓存")
}
