package services

import (
	"context"
	"log/slog"
	"time"

	"chartsvc/internal/infrastructure"
	"chartsvc/pkg/contracts"
	api "chartsvc/pkg/contracts/api/v1"
)

// Health states reported by health checks.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusAlive     = "alive"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// ReadinessCheck returns nil when its dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthService answers health, liveness, readiness and version checks.
type HealthService struct {
	version   string
	startTime time.Time
	checks    map[string]ReadinessCheck
	logger    *slog.Logger
}

// NewHealthService creates a health service with named readiness checks.
func NewHealthService(checks map[string]ReadinessCheck, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   contracts.Version,
		startTime: time.Now(),
		checks:    checks,
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck runs every readiness check and reports the aggregate status.
func (s *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	results, healthy := s.run(ctx)
	status := StatusHealthy
	if !healthy {
		status = StatusUnhealthy
	}
	return api.HealthResponse{
		Status:    status,
		Version:   s.version,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// ReadinessCheck reports whether the service can accept analysis requests.
func (s *HealthService) ReadinessCheck(ctx context.Context) (api.HealthResponse, bool) {
	results, ready := s.run(ctx)
	status := StatusReady
	if !ready {
		status = StatusNotReady
	}
	return api.HealthResponse{
		Status:    status,
		Version:   s.version,
		Timestamp: time.Now(),
		Checks:    results,
	}, ready
}

// LivenessCheck reports that the process is up, with runtime statistics.
func (s *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    StatusAlive,
		Version:   s.version,
		Timestamp: time.Now(),
		Runtime:   infrastructure.CollectRuntimeStats(s.startTime),
	}
}

// Version returns build information.
func (s *HealthService) Version() api.VersionResponse {
	return contracts.GetVersionInfo()
}

func (s *HealthService) run(ctx context.Context) (map[string]api.CheckResult, bool) {
	results := make(map[string]api.CheckResult, len(s.checks))
	ok := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			ok = false
			results[name] = api.CheckResult{Status: StatusUnhealthy, Message: err.Error()}
			s.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			continue
		}
		results[name] = api.CheckResult{Status: StatusHealthy}
	}
	return results, ok
}
