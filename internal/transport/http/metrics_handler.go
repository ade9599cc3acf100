package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps the exporter's handler. A nil handler disables the route.
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: handler}
}

// Routes registers GET /metrics on r
func (h *MetricsHandler) Routes(r chi.Router) {
	if h.handler == nil {
		return
	}
	r.Method(http.MethodGet, "/metrics", h.handler)
}
