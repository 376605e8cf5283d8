package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-table-service/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/", nil)
		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seen)
	})

	t.Run("propagated", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "req-123"})
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-123", seen)
	})

	t.Run("oversized header replaced", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: strings.Repeat("x", 200)})
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestLogger_WritesAccessLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/records/:index", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	perform(r, http.MethodGet, "/records/7", map[string]string{RequestIDHeader: "abc"})

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/records/:index", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "abc", fields["request_id"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/v1/records", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "form-action 'self'")

	w = perform(r, http.MethodGet, "/v1/records", nil)
	assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
}

func newLimitedRouter(t *testing.T, client redis.UniversalClient, cfg TokenBucketConfig) *gin.Engine {
	r := gin.New()
	r.Use(NewTokenBucket(client, cfg, zaptest.NewLogger(t)).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestTokenBucket_BurstThenReject(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := newLimitedRouter(t, client, TokenBucketConfig{Enabled: true, RequestsPerSecond: 0.001, BurstCapacity: 3})

	for i := range 3 {
		w := perform(r, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestTokenBucket_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := newLimitedRouter(t, client, TokenBucketConfig{Enabled: false, RequestsPerSecond: 0.001, BurstCapacity: 1})

	for range 5 {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	}
}

func TestTokenBucket_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	r := newLimitedRouter(t, client, TokenBucketConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 1})
	mr.Close()

	for range 3 {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	}
}

func TestTokenBucket_NilLimiter(t *testing.T) {
	var tb *TokenBucket
	r := gin.New()
	r.Use(tb.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
}
