package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "user-table-service/internal/adapter/grpc"
	"user-table-service/internal/adapter/grpc/middleware"
	"user-table-service/internal/observability"
	"user-table-service/internal/usecase/record"
	"user-table-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(uc record.Usecase, l *zap.Logger, rateLimiter *middleware.RateLimiter, metrics *observability.Metrics) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.RecoveryInterceptor(l),
		logger.RequestIDInterceptor(),
	}
	if metrics != nil {
		interceptors = append(interceptors, metrics.UnaryInterceptor())
	}
	interceptors = append(interceptors,
		rateLimiter.UnaryInterceptor(),
		middleware.ErrorInterceptor(l),
	)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	grpcadapter.RegisterRecordService(grpcServer, grpcadapter.NewRecordServiceServer(uc, l))

	return grpcServer
}
