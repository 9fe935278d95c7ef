package http

import (
	"net/http"

	"github.com/pairbench/pairbench/internal/runner"
)

// NewServeMux assembles the service routes behind the default middleware
// chain.
func NewServeMux(r *runner.Runner) *http.ServeMux {
	mw := DefaultMiddleware()

	mux := http.NewServeMux()
	mux.Handle("/api/performance/", mw(NewPerformanceHandler(r)))
	mux.Handle("/v1/stats", mw(NewStatsHandler(r.Stats(), r.Workloads())))
	mux.Handle("/healthz", mw(&HealthHandler{}))
	return mux
}
