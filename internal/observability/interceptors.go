// Package observability provides the metrics and probe HTTP server and the
// gRPC interceptors that count and log served calls.
package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"explanation-coach-service/internal/observability/metrics"
)

// UnaryServerInterceptor counts every unary call by method and code. Health
// probes log at debug so orchestrator polling stays out of info logs.
func UnaryServerInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		event := callEvent(ctx, m, info.FullMethod, err, time.Since(start))
		if check, ok := req.(*grpc_health_v1.HealthCheckRequest); ok {
			event.Str("probedService", check.GetService()).Msg("Health probe served")
			return resp, err
		}
		event.Msg("RPC served")
		return resp, err
	}
}

// StreamServerInterceptor counts every streaming call, health watches
// included, once the stream ends.
func StreamServerInterceptor(m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)

		callEvent(ss.Context(), m, info.FullMethod, err, time.Since(start)).
			Bool("stream", true).
			Msg("RPC stream closed")
		return err
	}
}

// callEvent records the call and returns a log event carrying its outcome.
// Failures log at warn, health traffic at debug, everything else at info.
func callEvent(ctx context.Context, m *metrics.Metrics, method string, err error, elapsed time.Duration) *zerolog.Event {
	code := status.Code(err)
	m.RecordRPC(method, code.String())

	var event *zerolog.Event
	switch {
	case code != codes.OK:
		event = log.Warn().Err(err)
	case isHealthMethod(method):
		event = log.Debug()
	default:
		event = log.Info()
	}

	event = event.
		Str("component", "grpc").
		Str("method", method).
		Str("code", code.String()).
		Dur("duration", elapsed)
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		event = event.Str("peer", p.Addr.String())
	}
	return event
}

func isHealthMethod(method string) bool {
	return method == grpc_health_v1.Health_Check_FullMethodName ||
		method == grpc_health_v1.Health_Watch_FullMethodName
}
