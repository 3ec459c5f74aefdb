package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go-portfolio/internal/domain/model"
	"go-portfolio/internal/logging"
	"go-portfolio/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const opLogSendTimeout = 3 * time.Second

// OpLogSender 操作日志的发送端，生产环境为 kafka.Producer
type OpLogSender interface {
	SendWithHeaders(ctx context.Context, key, value []byte, headers map[string]string) error
}

// OperationLog 记录写操作 (POST/PUT/DELETE)；s 为 nil 时直接跳过。
// 发送在后台进行，不阻塞响应。
func OperationLog(s OpLogSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s == nil || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		e := buildOpLogEntry(c, start)
		b, err := json.Marshal(e)
		if err != nil {
			return
		}
		headers := map[string]string{}
		if e.TraceID != "" {
			headers["trace_id"] = e.TraceID
		}
		reqCtx := c.Request.Context()
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), opLogSendTimeout)
			defer cancel()
			if err := s.SendWithHeaders(ctx, []byte(e.ActionName), b, headers); err != nil {
				metrics.OpLogPublishErrors.Inc()
				logging.FromContext(reqCtx).Warn("oplog_publish_failed", zap.String("action", e.ActionName), zap.Error(err))
			}
		}()
	}
}

func buildOpLogEntry(c *gin.Context, start time.Time) model.OpLogEvent {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	e := model.OpLogEvent{
		ActionName: deriveActionName(path, c.Request.Method),
		Path:       path,
		Target:     c.Param("id"),
		Method:     c.Request.Method,
		Status:     c.Writer.Status(),
		LatencyMS:  time.Since(start).Milliseconds(),
		IP:         c.ClientIP(),
		Time:       time.Now().Format(time.RFC3339),
		TraceID:    c.GetString(TraceIDKey),
	}
	for _, er := range c.Errors {
		e.Errors = append(e.Errors, er.Error())
	}
	return e
}

// deriveActionName "/api/v1/users/:id" + DELETE -> "delete_api_v1_users_id"
func deriveActionName(path, method string) string {
	p := strings.Trim(path, "/")
	if p == "" {
		return strings.ToLower(method)
	}
	p = strings.NewReplacer("/", "_", ":", "", "*", "").Replace(p)
	return strings.ToLower(method + "_" + p)
}
