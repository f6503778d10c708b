package grpc_server

import (
	"context"
	"net"
	"time"

	"kursus/services/progress-service/internal/platform/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported by the health service.
const ServiceName = "kursus.progress.v1.ProgressService"

// HealthServer exposes grpc.health.v1 and flips between SERVING and
// NOT_SERVING based on a periodic store probe.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	probe  func(ctx context.Context) error
	log    *logger.Logger
}

func NewHealthServer(probe func(ctx context.Context) error, log *logger.Logger) *HealthServer {
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)

	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{server: s, health: h, probe: probe, log: log}
}

// Check runs the probe once and records the result.
func (s *HealthServer) Check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		if err := s.probe(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.log.Warn("health probe failed", "error", err)
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Monitor re-probes every interval until ctx is done.
func (s *HealthServer) Monitor(ctx context.Context, interval time.Duration) {
	s.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
