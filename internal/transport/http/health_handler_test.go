package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chartsvc/internal/services"
	"chartsvc/internal/shared/testutil"
	"chartsvc/pkg/contracts"
	api "chartsvc/pkg/contracts/api/v1"
)

type mockHealthService struct {
	mock.Mock
}

func (m *mockHealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	return m.Called(ctx).Get(0).(api.HealthResponse)
}

func (m *mockHealthService) ReadinessCheck(ctx context.Context) (api.HealthResponse, bool) {
	args := m.Called(ctx)
	return args.Get(0).(api.HealthResponse), args.Bool(1)
}

func (m *mockHealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	return m.Called(ctx).Get(0).(api.HealthResponse)
}

func (m *mockHealthService) Version() api.VersionResponse {
	return m.Called().Get(0).(api.VersionResponse)
}

func TestHealthHandler(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		path       string
		setup      func(m *mockHealthService)
		wantStatus int
		wantField  string
		wantValue  any
	}{
		{
			name: "healthy",
			path: "/api/health",
			setup: func(m *mockHealthService) {
				m.On("HealthCheck", mock.Anything).Return(api.HealthResponse{Status: services.StatusHealthy, Timestamp: now})
			},
			wantStatus: http.StatusOK,
			wantField:  "status",
			wantValue:  services.StatusHealthy,
		},
		{
			name: "unhealthy",
			path: "/api/health",
			setup: func(m *mockHealthService) {
				m.On("HealthCheck", mock.Anything).Return(api.HealthResponse{Status: services.StatusUnhealthy, Timestamp: now})
			},
			wantStatus: http.StatusServiceUnavailable,
			wantField:  "status",
			wantValue:  services.StatusUnhealthy,
		},
		{
			name: "ready",
			path: "/api/health/ready",
			setup: func(m *mockHealthService) {
				m.On("ReadinessCheck", mock.Anything).Return(api.HealthResponse{Status: services.StatusReady}, true)
			},
			wantStatus: http.StatusOK,
			wantField:  "status",
			wantValue:  services.StatusReady,
		},
		{
			name: "not ready",
			path: "/api/health/ready",
			setup: func(m *mockHealthService) {
				m.On("ReadinessCheck", mock.Anything).Return(api.HealthResponse{Status: services.StatusNotReady}, false)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantField:  "status",
			wantValue:  services.StatusNotReady,
		},
		{
			name: "live",
			path: "/api/health/live",
			setup: func(m *mockHealthService) {
				m.On("LivenessCheck", mock.Anything).Return(api.HealthResponse{Status: services.StatusAlive})
			},
			wantStatus: http.StatusOK,
			wantField:  "status",
			wantValue:  services.StatusAlive,
		},
		{
			name: "version",
			path: "/api/version",
			setup: func(m *mockHealthService) {
				m.On("Version").Return(contracts.GetVersionInfo())
			},
			wantStatus: http.StatusOK,
			wantField:  "version",
			wantValue:  contracts.Version,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockHealthService{}
			tt.setup(svc)
			logger, _ := testutil.NewTestLogger(t)

			r := chi.NewRouter()
			NewHealthHandler(svc, logger).Routes(r)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValue, decodeJSON(t, rec)[tt.wantField])
			svc.AssertExpectations(t)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	r := chi.NewRouter()
	NewMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP up\n"))
	})).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP up")

	disabled := chi.NewRouter()
	NewMetricsHandler(nil).Routes(disabled)
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
