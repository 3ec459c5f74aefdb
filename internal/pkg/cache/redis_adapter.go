package cache

import (
	"context"
	"time"

	redisrepo "go-portfolio/internal/repository/redis"
)

// TTLFetcher 可选接口：支持返回剩余 TTL
type TTLFetcher interface {
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool)
}

// RedisAdapter 实现 Cache 接口，包装 redis 客户端
type RedisAdapter struct{ c *redisrepo.Client }

func NewRedisAdapter(c *redisrepo.Client) *RedisAdapter { return &RedisAdapter{c: c} }

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	return r.c.Get(ctx, key), nil
}

func (r *RedisAdapter) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.c.SetTTL(ctx, key, val, ttl)
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	return r.c.Del(ctx, keys...)
}

// RemainingTTL -2 不存在; -1 无过期; 正常 >0
func (r *RedisAdapter) RemainingTTL(ctx context.Context, key string) (time.Duration, bool) {
	res := r.c.Client.TTL(ctx, key)
	if err := res.Err(); err != nil {
		return 0, false
	}
	d := res.Val()
	if d <= 0 {
		return 0, false
	}
	return d, true
}
