package grpc

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"holiday-service/internal/observability"
)

// ServiceName is the health service name reported for this process.
const ServiceName = "holiday.Service"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server exposes the standard gRPC health service for orchestrator health checks.
type Server struct {
	srv    *grpclib.Server
	health *health.Server
}

// NewServer builds the gRPC server with tracing and metrics interceptors.
func NewServer() *Server {
	srv := grpclib.NewServer(
		grpclib.StatsHandler(otelgrpc.NewServerHandler()),
		grpclib.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	s := &Server{srv: srv, health: h}
	s.SetServing(false)
	return s
}

// SetServing flips both the overall and the named service status.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch pings the database every interval and mirrors the result in the
// health status until ctx is done.
func (s *Server) Watch(ctx context.Context, db Pinger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := db.PingContext(pingCtx)
			cancel()
			if (err == nil) != healthy {
				healthy = err == nil
				if healthy {
					log.Info().Msg("grpc health: database reachable again")
				} else {
					log.Error().Err(err).Msg("grpc health: database unreachable")
				}
				s.SetServing(healthy)
			}
		}
	}
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// GracefulStop reports NOT_SERVING, then drains in-flight RPCs.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
