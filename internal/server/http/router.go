package http

import (
	"context"
	"net/http"
	"time"

	"go-portfolio/internal/logging"
	"go-portfolio/internal/mq/kafka"
	handlerset "go-portfolio/internal/server/http/handler"
	"go-portfolio/internal/server/http/middleware"
	obs "go-portfolio/internal/server/http/middleware/observability"
	"go-portfolio/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const homeText = "Portfolio Backend is Running!"

// NewRouter 仅负责分组与中间件装配，具体业务放在 handler 层
func NewRouter(logger *logging.Logger, producer *kafka.Producer, hc *HealthChecker, h *handlerset.HandlerSet) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), obs.TraceMiddleware(), obs.LoggerContextMiddleware(logger), obs.AccessLog(logger), obs.Metrics())

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, homeText) })

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.Invalidate()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// nil 指针不能直接塞进接口，否则中间件判空失效
	var sender obs.OpLogSender
	if producer != nil {
		sender = producer
	}
	v1 := r.Group("/api/v1", obs.OperationLog(sender))
	{
		v1.POST("/users/save", h.User.Save)
		v1.GET("/users", h.User.List)
		v1.DELETE("/users/:id", h.User.Delete)

		v1.GET("/projects", h.Project.List)
		v1.POST("/projects", h.Project.Add)
		v1.DELETE("/projects/:id", h.Project.Delete)

		v1.POST("/upload", h.Image.Upload)
		v1.GET("/images", h.Image.List)
	}
	// 上传文件原样返回
	r.GET("/uploads/:filename", h.Image.Serve)

	// 统一 404
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.ErrorBody{Error: "Not Found"})
	})
	return r
}
