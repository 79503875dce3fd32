package verify

import (
	"context"
	"sync"
	"time"

	"github.com/blues/trs/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Cache 校验结果缓存。纯粹的延迟优化，只缓存幂等的外部查询结果，
// 永远不作为资金决策的唯一依据
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// MemoryCache 进程内 TTL 缓存，配合定时清理任务使用
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	nowFn   func() time.Time
}

type memoryEntry struct {
	value    string
	expireAt time.Time
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		nowFn:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.nowFn().After(entry.expireAt) {
		return "", false
	}
	return entry.value, true
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expireAt: c.nowFn().Add(c.ttl)}
}

// Sweep 清理过期条目，返回清理数量
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFn()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expireAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// RedisCache Redis 版 TTL 缓存，多实例部署时共享校验结果
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, "verify:"+key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Failed to read verification cache %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, "verify:"+key, value, c.ttl).Err(); err != nil {
		logger.Warn("Failed to write verification cache %s: %v", key, err)
	}
}
