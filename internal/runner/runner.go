package runner

import (
	"context"
	"fmt"
	"log"

	perrors "github.com/pairbench/pairbench/internal/errors"
	"github.com/pairbench/pairbench/internal/observability"
	"github.com/pairbench/pairbench/internal/probe"
	"github.com/pairbench/pairbench/internal/workload"
)

// Runner executes workload variants under the probes and records run
// statistics. It holds no per-request state and is safe for concurrent use.
type Runner struct {
	registry *workload.Registry
	memProbe *probe.MemoryProbe
	stats    *observability.RunStats
}

// New creates a Runner. A nil memProbe gets the default probe; a nil stats
// tracker gets a fresh one.
func New(registry *workload.Registry, memProbe *probe.MemoryProbe, stats *observability.RunStats) *Runner {
	if memProbe == nil {
		memProbe = probe.NewMemoryProbe()
	}
	if stats == nil {
		stats = observability.NewRunStats()
	}
	return &Runner{
		registry: registry,
		memProbe: memProbe,
		stats:    stats,
	}
}

// Stats exposes the run statistics tracker.
func (r *Runner) Stats() *observability.RunStats {
	return r.stats
}

// Workloads returns the names of the registered workload pairs.
func (r *Runner) Workloads() []string {
	return r.registry.Names()
}

// Run executes one variant of the named workload under the probes. Unknown
// workload names and inputs violating the pair's constraints are typed
// errors surfaced before any workload code runs.
func (r *Runner) Run(ctx context.Context, name string, v workload.Variant, in workload.Input) (*RunResult, error) {
	pair, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if err := pair.Validate(in); err != nil {
		return nil, err
	}

	// The heap readings bracket the timed section instead of nesting
	// inside it: the reclamation hint and settle delay are probe
	// overhead and must never count as variant cost.
	needsMem := pair.NeedsMemoryProbe()
	var heapBefore uint64
	if needsMem {
		heapBefore = r.memProbe.Before()
	}

	summary, elapsedMs, err := probe.Time(func() (int64, error) {
		return workload.Run(ctx, pair, v, in)
	})
	if err != nil {
		r.stats.RecordFailure(name, string(v))
		return nil, err
	}

	var memDelta *uint64
	degraded := false
	if needsMem {
		delta, deg := r.memProbe.After(heapBefore)
		memDelta = &delta
		degraded = deg
	}

	if degraded {
		// Annotation only: the run still succeeds, the delta is just noisy.
		log.Printf("runner: %s/%s memory measurement degraded, delta unreliable", name, v)
	}

	r.stats.RecordRun(name, string(v), elapsedMs, degraded)

	return &RunResult{
		ExecutionTimeMs: elapsedMs,
		Result:          summary,
		MemoryUsedBytes: memDelta,
	}, nil
}

// CompareBoth runs baseline then optimized sequentially — never
// concurrently, so memory-probe baselines are not cross-contaminated — and
// returns both results. A failure on either side fails the whole comparison:
// partial comparisons are never reported.
func (r *Runner) CompareBoth(ctx context.Context, name string, in workload.Input) (*Comparison, error) {
	baseline, err := r.Run(ctx, name, workload.VariantBaseline, in)
	if err != nil {
		return nil, wrapComparisonFailure(name, workload.VariantBaseline, err)
	}

	optimized, err := r.Run(ctx, name, workload.VariantOptimized, in)
	if err != nil {
		return nil, wrapComparisonFailure(name, workload.VariantOptimized, err)
	}

	return &Comparison{
		Workload:  name,
		Baseline:  *baseline,
		Optimized: *optimized,
	}, nil
}

// wrapComparisonFailure keeps validation errors intact (they carry the
// client-facing code) and marks variant failures as hard comparison
// failures.
func wrapComparisonFailure(name string, v workload.Variant, err error) error {
	if perrors.GetCategory(err) == perrors.ErrCategoryValidation {
		return err
	}
	return perrors.NewWorkloadError(
		fmt.Sprintf("comparison of %s failed on %s variant", name, v), err)
}
