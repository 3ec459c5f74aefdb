package observability

import (
	"strconv"
	"strings"
	"time"

	"go-portfolio/internal/metrics"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1/"

// Metrics 按资源聚合请求量与耗时。route 用路由模板，未匹配的请求统一记为 unmatched，
// 避免随机路径撑爆标签基数。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.Inflight.Inc()
		defer metrics.Inflight.Dec()
		start := time.Now()
		c.Next()

		route := c.FullPath()
		res := resourceOf(route)
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(res, c.Request.Method).Observe(time.Since(start).Seconds())
		metrics.RequestTotal.WithLabelValues(res, route, c.Request.Method, statusClass(c.Writer.Status())).Inc()
	}
}

// resourceOf "/api/v1/users/:id" -> users；上传与静态文件都归到 images
func resourceOf(route string) string {
	switch {
	case route == "":
		return "unmatched"
	case route == "/uploads/:filename":
		return "images"
	case !strings.HasPrefix(route, apiPrefix):
		return "ops"
	}
	seg, _, _ := strings.Cut(strings.TrimPrefix(route, apiPrefix), "/")
	if seg == "upload" {
		return "images"
	}
	return seg
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}
