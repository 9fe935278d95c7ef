package http

import (
	"net/http"

	"github.com/pairbench/pairbench/internal/observability"
)

// StatsResponse is the payload of GET /v1/stats.
type StatsResponse struct {
	Workloads []string                     `json:"workloads"`
	Variants  []observability.VariantStats `json:"variants"`
}

// StatsHandler serves run statistics.
type StatsHandler struct {
	stats     *observability.RunStats
	workloads []string
}

// NewStatsHandler creates the stats handler.
func NewStatsHandler(stats *observability.RunStats, workloads []string) *StatsHandler {
	return &StatsHandler{stats: stats, workloads: workloads}
}

// ServeHTTP handles GET /v1/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", GetRequestID(r.Context()))
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Workloads: h.workloads,
		Variants:  h.stats.Snapshot(),
	})
}

// HealthHandler serves GET /healthz.
type HealthHandler struct{}

// ServeHTTP reports liveness.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
