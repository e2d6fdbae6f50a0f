package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	StatusConnected     = "connected"
	StatusDisconnected  = "disconnected"
	StatusNotConfigured = "not configured"
)

// Status 健康状态
type Status struct {
	Service  string `json:"service"`
	NATS     string `json:"nats"`
	Redis    string `json:"redis"`
	Postgres string `json:"postgres"`
	Sessions int    `json:"sessions"`
}

// NATSConn *nats.Conn 满足该接口
type NATSConn interface {
	IsConnected() bool
}

// RedisPinger *redis.Client 满足该接口
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// DBPinger *pgxpool.Pool 满足该接口
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter 会话计数器接口
type SessionCounter interface {
	Count() int
}

// Checker 健康检查器, 未配置的依赖传 nil
type Checker struct {
	nc       NATSConn
	redis    RedisPinger
	db       DBPinger
	sessions SessionCounter
	timeout  time.Duration
}

// NewChecker 创建健康检查器
func NewChecker(nc NATSConn, redisClient RedisPinger, db DBPinger, sessions SessionCounter) *Checker {
	return &Checker{
		nc:       nc,
		redis:    redisClient,
		db:       db,
		sessions: sessions,
		timeout:  2 * time.Second,
	}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{Service: "sabacc"}

	switch {
	case h.nc == nil:
		status.NATS = StatusNotConfigured
	case h.nc.IsConnected():
		status.NATS = StatusConnected
	default:
		status.NATS = StatusDisconnected
	}

	status.Redis = h.ping(ctx, h.redis != nil, func(ctx context.Context) error {
		return h.redis.Ping(ctx).Err()
	})
	status.Postgres = h.ping(ctx, h.db != nil, func(ctx context.Context) error {
		return h.db.Ping(ctx)
	})

	if h.sessions != nil {
		status.Sessions = h.sessions.Count()
	}
	return status
}

func (h *Checker) ping(ctx context.Context, configured bool, fn func(context.Context) error) string {
	if !configured {
		return StatusNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

// IsReady 所有已配置的依赖都可用
func (h *Checker) IsReady(ctx context.Context) bool {
	return ready(h.Check(ctx))
}

func ready(s *Status) bool {
	for _, v := range []string{s.NATS, s.Redis, s.Postgres} {
		if v == StatusDisconnected {
			return false
		}
	}
	return true
}

// Health 存活检查, 进程在就返回 200
// GET /health
func (h *Checker) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready 就绪检查, 依赖不可用时返回 503
// GET /ready
func (h *Checker) Ready(c *gin.Context) {
	status := h.Check(c.Request.Context())
	if !ready(status) {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
