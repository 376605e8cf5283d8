package middleware

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "user-table-service/pkg/errors"
	"user-table-service/pkg/logger"
)

// toStatus converts a handler error into a gRPC status error.
// A typed error supplies its own status, so wrapped causes never reach the
// caller. Errors without a status become Internal with a generic message.
func toStatus(err error) error {
	var statuser pkgerrors.GRPCStatuser
	if errors.As(err, &statuser) {
		if st := statuser.GRPCStatus(); st != nil {
			return st.Err()
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "internal error")
}

// ErrorInterceptor maps domain errors to gRPC codes and logs each call.
func ErrorInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			err = toStatus(err)
		}

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}

		l := logger.WithContext(ctx, log)
		switch code {
		case codes.OK:
			l.Info("grpc request", fields...)
		case codes.Internal, codes.Unknown, codes.Unavailable:
			l.Error("grpc request", fields...)
		default:
			l.Warn("grpc request", fields...)
		}

		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}
