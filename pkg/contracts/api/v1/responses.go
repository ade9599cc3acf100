package api

import (
	"time"

	"chartsvc/pkg/contracts"
)

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Runtime   any                    `json:"runtime,omitempty"`
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VersionResponse is returned by /api/version.
type VersionResponse = contracts.VersionInfo
