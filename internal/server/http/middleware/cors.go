package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 允许任意来源；预检请求直接返回 204
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Trace-Id"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:          12 * time.Hour,
	})
}
