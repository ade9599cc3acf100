package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartsvc/internal/infrastructure"
	"chartsvc/internal/shared/testutil"
	"chartsvc/pkg/contracts"
)

func TestHealthService_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]ReadinessCheck
		wantReady  bool
		wantStatus string
		wantHealth string
	}{
		{
			name:       "no checks",
			wantReady:  true,
			wantStatus: StatusReady,
			wantHealth: StatusHealthy,
		},
		{
			name: "all checks pass",
			checks: map[string]ReadinessCheck{
				"renderer": func(context.Context) error { return nil },
			},
			wantReady:  true,
			wantStatus: StatusReady,
			wantHealth: StatusHealthy,
		},
		{
			name: "one check fails",
			checks: map[string]ReadinessCheck{
				"renderer": func(context.Context) error { return nil },
				"fonts":    func(context.Context) error { return errors.New("font missing") },
			},
			wantReady:  false,
			wantStatus: StatusNotReady,
			wantHealth: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			svc := NewHealthService(tt.checks, logger)

			resp, ready := svc.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantReady, ready)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))

			health := svc.HealthCheck(context.Background())
			assert.Equal(t, tt.wantHealth, health.Status)
			assert.Equal(t, contracts.Version, health.Version)
		})
	}
}

func TestHealthService_FailedCheckIsReportedAndLogged(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	svc := NewHealthService(map[string]ReadinessCheck{
		"fonts": func(context.Context) error { return errors.New("font missing") },
	}, logger)

	resp, _ := svc.ReadinessCheck(context.Background())

	require.Contains(t, resp.Checks, "fonts")
	assert.Equal(t, StatusUnhealthy, resp.Checks["fonts"].Status)
	assert.Equal(t, "font missing", resp.Checks["fonts"].Message)
	assert.True(t, handler.ContainsMessage("readiness check failed"))
	assert.True(t, handler.ContainsAttr("check", "fonts"))
}

func TestHealthService_Liveness(t *testing.T) {
	svc := NewHealthService(nil, nil)

	resp := svc.LivenessCheck(context.Background())

	assert.Equal(t, StatusAlive, resp.Status)
	stats, ok := resp.Runtime.(infrastructure.RuntimeStats)
	require.True(t, ok)
	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.CPUCount)
}

func TestHealthService_Version(t *testing.T) {
	svc := NewHealthService(nil, nil)

	v := svc.Version()

	assert.Equal(t, contracts.Version, v.Version)
	assert.Equal(t, contracts.APIVersion, v.APIVersion)
}
