// Package services implements the analysis pipeline behind each HTTP capability.
//
// AnalysisService runs one request through parse, filter, aggregate and
// render, strictly in that order and without shared mutable state, so
// concurrent requests never observe each other. Every stage returns typed
// errors from internal/errors; the service adds no wrapping of its own so the
// transport layer can map them to status codes directly.
//
// HealthService answers liveness, readiness and version checks.
package services
