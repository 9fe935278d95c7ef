// Package runner orchestrates measured execution of workload variants: it
// wraps the chosen variant in the timing probe (and the memory probe where
// the pair asks for one) and packages the outcome as a RunResult.
package runner

// RunResult is the structured outcome of one measured variant run. It is
// produced fresh per invocation, immutable once returned, and owned by the
// caller.
type RunResult struct {
	// ExecutionTimeMs is the wall-clock cost in whole milliseconds.
	ExecutionTimeMs int64 `json:"executionTimeMs"`

	// Result is the variant's summary value.
	Result int64 `json:"result"`

	// MemoryUsedBytes is the best-effort resident-memory delta, present
	// only for workloads that request the memory probe.
	MemoryUsedBytes *uint64 `json:"memoryUsedBytes,omitempty"`
}

// Comparison pairs the baseline and optimized results of one workload run
// over identical input.
type Comparison struct {
	Workload  string    `json:"workload"`
	Baseline  RunResult `json:"baseline"`
	Optimized RunResult `json:"optimized"`
}
