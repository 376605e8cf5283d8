package middleware

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-table-service/pkg/logger"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	WindowSeconds     int
	Enabled           bool
}

// fixedWindowScript counts a request in the current window and starts the
// window on its first request.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
end
return count
`)

// RateLimiter implements gRPC rate limiting using Redis.
type RateLimiter struct {
	client redis.UniversalClient
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter interceptor.
func NewRateLimiter(client redis.UniversalClient, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	if config.WindowSeconds <= 0 {
		config.WindowSeconds = 1
	}
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// maxRequests is the number of requests allowed per window, at least one.
func (rl *RateLimiter) maxRequests() int64 {
	n := int64(rl.config.RequestsPerSecond * float64(rl.config.WindowSeconds))
	if n < 1 {
		return 1
	}
	return n
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
// A nil limiter lets every request through.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if rl == nil || rl.client == nil || !rl.config.Enabled {
			return handler(ctx, req)
		}

		clientIP := getClientIP(ctx)

		// ratelimit:grpc:{method}:{ip}
		key := fmt.Sprintf("ratelimit:grpc:%s:%s", info.FullMethod, clientIP)
		limit := rl.maxRequests()

		count, err := fixedWindowScript.Run(ctx, rl.client, []string{key}, rl.config.WindowSeconds).Int64()
		if err != nil {
			// Fail open
			logger.WithContext(ctx, rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if count > limit {
			logger.WithContext(ctx, rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Int64("count", count),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %d requests in %d seconds (limit: %d)",
				count, rl.config.WindowSeconds, limit)
		}

		return handler(ctx, req)
	}
}

// getClientIP extracts the client IP address from the gRPC context.
func getClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok {
		return p.Addr.String()
	}

	return "unknown"
}
