package http

import (
	"context"

	api "chartsvc/pkg/contracts/api/v1"
)

// HealthService defines the checks behind the health routes
type HealthService interface {
	HealthCheck(ctx context.Context) api.HealthResponse
	ReadinessCheck(ctx context.Context) (api.HealthResponse, bool)
	LivenessCheck(ctx context.Context) api.HealthResponse
	Version() api.VersionResponse
}
