package http

import (
	"context"
	"sync"
	"time"

	"go-portfolio/internal/discovery/etcd"
	"go-portfolio/internal/metrics"
	"go-portfolio/internal/mq/kafka"
	"go-portfolio/internal/pkg/cache"
	"go-portfolio/internal/repository/database"
	redisrepo "go-portfolio/internal/repository/redis"
	"go-portfolio/internal/storage"

	"gorm.io/gorm"
)

type depCheck struct {
	name    string
	timeout time.Duration
	fn      func(ctx context.Context) error
}

// HealthChecker 聚合健康检查（liveness / readiness）
// db 与文件存储必检；redis / kafka / etcd 未启用时不参与
type HealthChecker struct {
	checks []depCheck
	cache  *cache.LayeredCache

	cacheMu     sync.Mutex
	cacheResult map[string]interface{}
	cacheCode   int
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

func NewHealthChecker(db *gorm.DB, store storage.ImageStore, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client, lc *cache.LayeredCache) *HealthChecker {
	h := &HealthChecker{cache: lc, cacheTTL: 2 * time.Second}
	h.checks = append(h.checks,
		depCheck{name: "db", timeout: 300 * time.Millisecond, fn: func(ctx context.Context) error { return database.Ping(ctx, db) }},
		depCheck{name: "storage", timeout: 300 * time.Millisecond, fn: store.Ping},
	)
	if r != nil {
		h.checks = append(h.checks, depCheck{name: "redis", timeout: 250 * time.Millisecond, fn: r.Ping})
	}
	if p != nil {
		h.checks = append(h.checks, depCheck{name: "kafka", timeout: 250 * time.Millisecond, fn: p.Ping})
	}
	if e != nil {
		h.checks = append(h.checks, depCheck{name: "etcd", timeout: 250 * time.Millisecond, fn: func(ctx context.Context) error {
			_, err := e.Get(ctx, "health")
			return err
		}})
	}
	return h
}

// Liveness 仅表示进程活着，不依赖外部组件
func (h *HealthChecker) Liveness() map[string]interface{} {
	return map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
}

// Invalidate 丢弃缓存结果，下次 Readiness 重新探测
func (h *HealthChecker) Invalidate() {
	h.cacheMu.Lock()
	h.cacheExpiry = time.Time{}
	h.cacheMu.Unlock()
}

// Readiness 并发检测外部依赖，带缓存与耗时指标；任一失败返回 503
func (h *HealthChecker) Readiness(ctx context.Context) (map[string]interface{}, int) {
	h.cacheMu.Lock()
	if time.Now().Before(h.cacheExpiry) && h.cacheResult != nil {
		res, code := h.cacheResult, h.cacheCode
		h.cacheMu.Unlock()
		return res, code
	}
	h.cacheMu.Unlock()

	type depResult struct {
		name string
		up   bool
		err  string
		dur  time.Duration
	}
	results := make([]depResult, len(h.checks))
	var wg sync.WaitGroup
	for i, chk := range h.checks {
		wg.Add(1)
		go func(i int, chk depCheck) {
			defer wg.Done()
			start := time.Now()
			ctx2, cancel := context.WithTimeout(ctx, chk.timeout)
			err := chk.fn(ctx2)
			cancel()
			out := depResult{name: chk.name, up: err == nil, dur: time.Since(start)}
			if err != nil {
				out.err = err.Error()
			}
			metrics.DependencyCheckDuration.WithLabelValues(chk.name).Observe(out.dur.Seconds())
			if out.up {
				metrics.DependencyUp.WithLabelValues(chk.name).Set(1)
			} else {
				metrics.DependencyUp.WithLabelValues(chk.name).Set(0)
			}
			results[i] = out
		}(i, chk)
	}
	wg.Wait()

	res := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	detail := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		if r.up {
			res[r.name] = "up"
		} else {
			res[r.name] = r.err
			res["status"] = "degraded"
		}
		ms := float64(r.dur.Microseconds()) / 1000.0
		res[r.name+"_duration_ms"] = ms
		detail = append(detail, map[string]interface{}{"dep": r.name, "up": r.up, "error": r.err, "duration_ms": ms})
	}
	res["detail"] = detail
	if h.cache != nil {
		res["list_cache"] = h.cache.SnapshotMetrics()
	}

	code := 200
	if res["status"] != "ok" {
		code = 503
	}
	h.cacheMu.Lock()
	h.cacheResult, h.cacheCode = res, code
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()
	return res, code
}
