package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNATS bool

func (f fakeNATS) IsConnected() bool { return bool(f) }

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.err)
}

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

type fakeCounter int

func (f fakeCounter) Count() int { return int(f) }

func serveReady(t *testing.T, h *Checker) (int, Status) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var s Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return w.Code, s
}

func TestChecker_AllConnected(t *testing.T) {
	h := NewChecker(fakeNATS(true), fakeRedis{}, fakeDB{}, fakeCounter(3))

	code, s := serveReady(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusConnected, s.NATS)
	assert.Equal(t, StatusConnected, s.Redis)
	assert.Equal(t, StatusConnected, s.Postgres)
	assert.Equal(t, 3, s.Sessions)
}

func TestChecker_DependencyDown(t *testing.T) {
	h := NewChecker(fakeNATS(true), fakeRedis{err: errors.New("refused")}, fakeDB{}, nil)

	code, s := serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDisconnected, s.Redis)
}

func TestChecker_NotConfigured(t *testing.T) {
	h := NewChecker(nil, nil, nil, nil)

	s := h.Check(context.Background())
	assert.Equal(t, StatusNotConfigured, s.NATS)
	assert.Equal(t, StatusNotConfigured, s.Redis)
	assert.Equal(t, StatusNotConfigured, s.Postgres)
	assert.True(t, h.IsReady(context.Background()))
}

func TestChecker_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewChecker(fakeNATS(false), nil, nil, nil)
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, h.IsReady(context.Background()))
}
