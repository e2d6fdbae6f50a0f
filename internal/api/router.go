package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"sudooom.sabacc/internal/health"
)

// SetupRouter 设置路由
func SetupRouter(mode string, h *Handler, checker *health.Checker) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	if checker != nil {
		r.GET("/health", checker.Health)
		r.GET("/ready", checker.Ready)
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/variants", h.ListVariants)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", h.CreateSession)
			sessions.GET("/:id", h.GetSession)
			sessions.POST("/:id/actions", h.SubmitAction)
			sessions.POST("/:id/disconnect", h.Disconnect)
			sessions.GET("/:id/result", h.GetResult)
		}
	}

	return r
}

// requestLogger 用 slog 记录请求
func requestLogger() gin.HandlerFunc {
	logger := slog.Default().With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}
