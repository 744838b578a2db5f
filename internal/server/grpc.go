package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const requestIDHeader = "x-request-id"

// NewGRPCServer builds a server with the extraction and health services
// registered. Both report SERVING.
func NewGRPCServer(svc ExtractionServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(requestLogger(logger))}, opts...)
	s := grpc.NewServer(opts...)
	RegisterExtractionServiceServer(s, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, hs
}

// requestLogger propagates an x-request-id header into the context, maps
// stray domain errors onto status codes and logs one line per call.
func requestLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, reqID := common.EnsureRequestID(ctx)
		resp, err := handler(ctx, req)
		attrs := []any{
			"method", info.FullMethod,
			"req_id", reqID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if code := common.ErrorCode(err); code != "" {
			attrs = append(attrs, "app_code", code)
		}
		err = common.ToStatus(err)
		logger.Debug("grpc.call", append(attrs, "code", status.Code(err).String())...)
		return resp, err
	}
}
