package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionStats reports live session counters
type SessionStats interface {
	GetHubMetrics() map[string]interface{}
}

// MetricsHandler serves the Prometheus exposition and session counters
type MetricsHandler struct {
	exposition http.Handler
	sessions   SessionStats
}

// NewMetricsHandler creates a metrics handler. A nil exposition falls back to
// the default Prometheus registry.
func NewMetricsHandler(exposition http.Handler, sessions SessionStats) *MetricsHandler {
	if exposition == nil {
		exposition = promhttp.Handler()
	}
	return &MetricsHandler{exposition: exposition, sessions: sessions}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.exposition.ServeHTTP(w, r)
}

// GetSessions handles GET /api/sessions
func (h *MetricsHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{"active_clients": 0}
	if h.sessions != nil {
		stats = h.sessions.GetHubMetrics()
	}
	success(w, r, stats)
}
