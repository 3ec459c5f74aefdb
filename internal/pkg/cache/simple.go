package cache

import (
	"context"
	"sync"
	"time"
)

// Cache 统一缓存接口，value 统一为 string（JSON 编解码在业务侧处理）
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEX(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type item struct {
	val string
	exp time.Time
}

// SimpleCache 线程安全、带 TTL 的进程级缓存（L1）
type SimpleCache struct {
	mu   sync.RWMutex
	data map[string]item
}

func New() *SimpleCache { return &SimpleCache{data: make(map[string]item)} }

func (c *SimpleCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return "", nil
	}
	return it.val, nil
}

func (c *SimpleCache) SetEX(_ context.Context, key, val string, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = item{val: val, exp: exp}
	c.mu.Unlock()
	return nil
}

func (c *SimpleCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.mu.Unlock()
	return nil
}

// RemainingTTL 与 RedisAdapter 一致，LayeredCache 回填时透传
func (c *SimpleCache) RemainingTTL(_ context.Context, key string) (time.Duration, bool) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || it.exp.IsZero() || time.Now().After(it.exp) {
		return 0, false
	}
	return time.Until(it.exp), true
}
