package middleware

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

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

// mockHandler is a simple handler that returns "success"
func mockHandler(ctx context.Context, req any) (any, error) {
	return "success", nil
}

func peerContext(t *testing.T, addr string) context.Context {
	tcp, err := net.ResolveTCPAddr("tcp", addr)
	require.NoError(t, err)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcp})
}

var getRecordInfo = &grpc.UnaryServerInfo{FullMethod: "/records.v1.RecordService/GetRecord"}

func TestRateLimiter_WithinLimit(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 10,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext(t, "127.0.0.1:12345")

	for i := 0; i < 5; i++ {
		resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}
}

func TestRateLimiter_ExceedLimit(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 5,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext(t, "127.0.0.1:12345")

	for i := 0; i < 5; i++ {
		resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}

	resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
	require.Error(t, err)
	assert.Nil(t, resp)

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.ResourceExhausted, st.Code())
	assert.Contains(t, st.Message(), "rate limit exceeded")
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		WindowSeconds:     1,
		Enabled:           false,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext(t, "127.0.0.1:12345")

	for i := 0; i < 10; i++ {
		resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}
}

func TestRateLimiter_NilLimiter(t *testing.T) {
	var rl *RateLimiter
	resp, err := rl.UnaryInterceptor()(context.Background(), nil, getRecordInfo, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 2,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()

	ctx1 := peerContext(t, "192.168.1.1:12345")
	for i := 0; i < 2; i++ {
		_, err := interceptor(ctx1, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
	}
	_, err := interceptor(ctx1, nil, getRecordInfo, mockHandler)
	require.Error(t, err)

	// a second client has its own window
	ctx2 := peerContext(t, "192.168.1.2:12345")
	resp, err := interceptor(ctx2, nil, getRecordInfo, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}

func TestRateLimiter_XForwardedFor(t *testing.T) {
	client, mr := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 5,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()

	md := metadata.Pairs("x-forwarded-for", "203.0.113.1")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	for i := 0; i < 3; i++ {
		resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}

	count, err := mr.Get("ratelimit:grpc:/records.v1.RecordService/GetRecord:203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, "3", count)
}

func TestRateLimiter_DifferentMethods(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 2,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext(t, "127.0.0.1:12345")

	for i := 0; i < 2; i++ {
		_, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
	}

	createInfo := &grpc.UnaryServerInfo{FullMethod: "/records.v1.RecordService/CreateRecord"}
	resp, err := interceptor(ctx, nil, createInfo, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 2,
		WindowSeconds:     2,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext(t, "127.0.0.1:12345")

	// 2 req/s * 2s = 4 per window
	for i := 0; i < 4; i++ {
		_, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
	}
	_, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
	require.Error(t, err)

	key := "ratelimit:grpc:/records.v1.RecordService/GetRecord:127.0.0.1:12345"
	ttl := mr.TTL(key)
	assert.Greater(t, ttl.Seconds(), 0.0)
	assert.LessOrEqual(t, ttl.Seconds(), 2.0)

	mr.FastForward(3 * time.Second)

	resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
	require.NoError(t, err)
	assert.Equal(t, "success", resp)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		WindowSeconds:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	ctx := peerContext(t, "127.0.0.1:12345")

	mr.Close()

	for i := 0; i < 3; i++ {
		resp, err := interceptor(ctx, nil, getRecordInfo, mockHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}
}

func TestRateLimiter_MinimumOneRequest(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimiterConfig{RequestsPerSecond: 0.1, Enabled: true}, zaptest.NewLogger(t))
	assert.Equal(t, int64(1), rl.maxRequests())
	assert.Equal(t, 1, rl.config.WindowSeconds)
}
