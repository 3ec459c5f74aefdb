package observability

import (
	"time"

	"go-portfolio/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog 输出基础 HTTP 访问日志；出错的请求额外带上错误文本，4xx/5xx 用 warn 级别
func AccessLog(l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		lg := l.WithContext(c.Request.Context())
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		if c.Writer.Status() >= 400 {
			lg.Warn("http_access", fields...)
			return
		}
		lg.Info("http_access", fields...)
	}
}
