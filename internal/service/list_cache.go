package service

import (
	"context"
	"encoding/json"
	"time"

	"go-portfolio/internal/logging"
	"go-portfolio/internal/metrics"
	"go-portfolio/internal/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListTTL 列表缓存有效期；<=0 表示不缓存
type ListTTL time.Duration

// genTTL 代际键的有效期，需长于任何列表 TTL；过期后重新生成，旧快照全部作废
const genTTL = 24 * time.Hour

// listSnapshot 缓存中的列表快照，Gen 为 load 开始前读到的代际
type listSnapshot[T any] struct {
	Gen   string `json:"gen"`
	Items []T    `json:"items"`
}

func genKey(key string) string { return key + ":gen" }

// currentGen 读取代际，不存在时生成一个
func currentGen(ctx context.Context, c cache.Cache, key string) string {
	if g, _ := c.Get(ctx, genKey(key)); g != "" {
		return g
	}
	g := uuid.NewString()
	_ = c.SetEX(ctx, genKey(key), g, genTTL)
	return g
}

// cachedList 读缓存，未命中时 load 并回写。
// 快照只在代际与当前一致时有效：load 期间发生的写操作会换掉代际，迟到的回写随之失效。
// 缓存损坏按未命中处理。
func cachedList[T any](ctx context.Context, c cache.Cache, ttl ListTTL, key, collection string, load func(context.Context) ([]T, error)) ([]T, error) {
	if c == nil || ttl <= 0 {
		return load(ctx)
	}
	gen := currentGen(ctx, c, key)
	if v, _ := c.Get(ctx, key); v != "" {
		var snap listSnapshot[T]
		if json.Unmarshal([]byte(v), &snap) == nil && snap.Gen == gen && snap.Items != nil {
			metrics.ListCacheLookups.WithLabelValues(collection, "hit").Inc()
			return snap.Items, nil
		}
	}
	metrics.ListCacheLookups.WithLabelValues(collection, "miss").Inc()

	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(listSnapshot[T]{Gen: gen, Items: list}); err == nil {
		_ = c.SetEX(ctx, key, string(b), time.Duration(ttl))
	}
	return list, nil
}

// invalidate 写操作后换代并删除快照；失败只记录日志，不影响写操作结果
func invalidate(ctx context.Context, c cache.Cache, key string) {
	if c == nil {
		return
	}
	log := logging.FromContext(ctx)
	if err := c.SetEX(ctx, genKey(key), uuid.NewString(), genTTL); err != nil {
		log.Warn("list_cache_bump_gen_failed", zap.String("key", key), zap.Error(err))
	}
	if err := c.Del(ctx, key); err != nil {
		log.Warn("list_cache_invalidate_failed", zap.String("key", key), zap.Error(err))
	}
}
