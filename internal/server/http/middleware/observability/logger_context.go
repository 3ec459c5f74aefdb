package observability

import (
	"go-portfolio/internal/logging"

	"github.com/gin-gonic/gin"
)

// LoggerContextMiddleware 将带 trace_id 的 logger 放入请求 context
// handler / service 通过 logging.FromContext(ctx) 获取
func LoggerContextMiddleware(base *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = logging.NewContext(ctx, base.WithContext(ctx))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
