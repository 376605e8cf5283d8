package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenBucketConfig holds configuration for the HTTP rate limiter.
type TokenBucketConfig struct {
	Enabled           bool
	RequestsPerSecond float64 // refill rate
	BurstCapacity     int     // bucket size
}

// tokenBucketScript refills and consumes one bucket atomically.
// Bucket state is {last_refill, tokens}; returns {allowed, remaining}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= requested then
		tokens = tokens - requested
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, 60)
	return {allowed, math.floor(tokens)}
`)

// TokenBucket rate-limits HTTP requests per method, route and client IP using Redis.
type TokenBucket struct {
	client redis.UniversalClient
	config TokenBucketConfig
	log    *zap.Logger
}

// NewTokenBucket creates a new HTTP rate limiter.
func NewTokenBucket(client redis.UniversalClient, config TokenBucketConfig, log *zap.Logger) *TokenBucket {
	return &TokenBucket{client: client, config: config, log: log}
}

// Middleware returns the gin handler. Redis errors let the request through.
func (tb *TokenBucket) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tb == nil || tb.client == nil || !tb.config.Enabled {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, c.ClientIP())

		ctx := c.Request.Context()
		t, err := tb.client.Time(ctx).Result()
		if err != nil {
			tb.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		now := float64(t.UnixMicro()) / 1e6

		res, err := tokenBucketScript.Run(ctx, tb.client, []string{key},
			tb.config.RequestsPerSecond,
			tb.config.BurstCapacity,
			now,
			1,
		).Int64Slice()
		if err != nil || len(res) != 2 {
			tb.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(tb.config.BurstCapacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] == 0 {
			tb.log.Warn("rate limit exceeded", zap.String("key", key))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", tb.config.RequestsPerSecond, tb.config.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
