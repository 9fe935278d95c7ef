// Package observability provides run statistics tracking for the comparison
// runner: per-workload/variant counters surfaced over the stats endpoint.
package observability

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RunStats tracks execution counters per workload variant.
type RunStats struct {
	mu       sync.RWMutex
	variants map[string]*VariantStats
}

// VariantStats holds counters for one workload variant.
type VariantStats struct {
	Workload string `json:"workload"`
	Variant  string `json:"variant"`

	// Runs is the number of completed runs.
	Runs int64 `json:"runs"`

	// Failures is the number of runs that returned an error.
	Failures int64 `json:"failures"`

	// DegradedMeasurements counts runs whose memory reading was flagged
	// unreliable (reclamation hint skipped or had no observable effect).
	DegradedMeasurements int64 `json:"degraded_measurements"`

	// LastElapsedMs is the elapsed time of the most recent completed run.
	LastElapsedMs int64 `json:"last_elapsed_ms"`

	// LastRun is when the variant last completed.
	LastRun time.Time `json:"last_run"`
}

// NewRunStats creates an empty statistics tracker.
func NewRunStats() *RunStats {
	return &RunStats{
		variants: make(map[string]*VariantStats),
	}
}

// RecordRun records a completed run. O(1) and thread-safe.
func (s *RunStats) RecordRun(workload, variant string, elapsedMs int64, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vs := s.get(workload, variant)
	vs.Runs++
	vs.LastElapsedMs = elapsedMs
	vs.LastRun = time.Now()
	if degraded {
		vs.DegradedMeasurements++
	}
}

// RecordFailure records a failed run. O(1) and thread-safe.
func (s *RunStats) RecordFailure(workload, variant string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vs := s.get(workload, variant)
	vs.Failures++
}

// get returns the entry for a variant, creating it if needed.
// Caller must hold s.mu.
func (s *RunStats) get(workload, variant string) *VariantStats {
	key := fmt.Sprintf("%s/%s", workload, variant)
	vs, ok := s.variants[key]
	if !ok {
		vs = &VariantStats{Workload: workload, Variant: variant}
		s.variants[key] = vs
	}
	return vs
}

// Snapshot returns a copy of all variant stats, most-run first, with ties
// broken by workload then variant name.
func (s *RunStats) Snapshot() []VariantStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]VariantStats, 0, len(s.variants))
	for _, vs := range s.variants {
		out = append(out, *vs)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Runs != out[j].Runs {
			return out[i].Runs > out[j].Runs
		}
		if out[i].Workload != out[j].Workload {
			return out[i].Workload < out[j].Workload
		}
		return out[i].Variant < out[j].Variant
	})

	return out
}
