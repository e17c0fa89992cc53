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

	"github.com/joseph-ayodele/po-tracker/internal/common"
)

const requestIDHeader = "x-request-id"

// loggingInterceptor attaches a request ID and a request-scoped logger to the
// context and logs every call.
func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, id := common.EnsureRequestID(ctx)
		l := logger.With("request_id", id, "method", info.FullMethod)
		ctx = common.WithLogger(ctx, l)

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			l.Warn("grpc call failed", "code", status.Code(err).String(), "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
		} else {
			l.Debug("grpc call ok", "elapsed_ms", time.Since(start).Milliseconds())
		}
		return resp, err
	}
}

// New returns a gRPC server with the health service and the extraction
// service registered.
func New(svc ExtractionServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterExtractionServer(s, svc)
	return s, hs
}
