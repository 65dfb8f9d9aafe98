// Package cache 提供接口响应缓存，过期时间由调用方配置，时钟可注入以便测试。
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio-go/internal/config"
	"portfolio-go/internal/storage"
)

// Clock 提供当前时间
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock 返回基于系统时间的时钟
func RealClock() Clock { return realClock{} }

// Cache 响应缓存
type Cache interface {
	// Get 返回未过期的缓存值
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Clear 清空全部缓存，任何写操作之后调用
	Clear(ctx context.Context)
}

type entry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache 进程内TTL缓存
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry
}

// NewMemoryCache 创建进程内缓存，clock为nil时使用系统时钟
func NewMemoryCache(ttl time.Duration, clock Clock) *MemoryCache {
	if clock == nil {
		clock = realClock{}
	}
	return &MemoryCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get 返回缓存值，超过TTL的条目视为不存在并被移除
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.clock.Now()}
	c.mu.Unlock()
}

func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len 当前条目数，包括尚未被访问淘汰的过期条目
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// New 按配置创建缓存。backend为redis但未提供Redis客户端时返回错误。
func New(cfg config.CacheConfig, redis *storage.Redis) (Cache, error) {
	ttl := config.GetDuration(cfg.TTL, 5*time.Second)
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(ttl, nil), nil
	case "redis":
		if redis == nil {
			return nil, fmt.Errorf("缓存后端为redis但Redis未初始化")
		}
		return NewRedisCache(redis, ttl), nil
	default:
		return nil, fmt.Errorf("未知的缓存后端: %s", cfg.Backend)
	}
}
