package probe

import (
	"runtime"
	"time"
)

// DefaultSettleDelay is how long the probe waits after a reclamation hint
// before taking the second heap reading, mirroring the settle window the
// memory workload was designed around.
const DefaultSettleDelay = 50 * time.Millisecond

// MemoryProbe samples process heap usage around an operation and reports a
// best-effort delta. Readings come from runtime.ReadMemStats, so results are
// noisy and host-dependent: other goroutines allocate concurrently, and the
// collector runs on its own schedule. Callers must treat the delta as an
// approximation, never a guarantee.
type MemoryProbe struct {
	// ReclaimHint requests a best-effort collection pass between the
	// operation and the second reading so deferred reclamation can occur.
	ReclaimHint bool

	// SettleDelay is how long to wait after the reclamation hint before
	// sampling again. Ignored when ReclaimHint is false.
	SettleDelay time.Duration
}

// NewMemoryProbe returns a probe with the reclamation hint enabled and the
// default settle delay.
func NewMemoryProbe() *MemoryProbe {
	return &MemoryProbe{
		ReclaimHint: true,
		SettleDelay: DefaultSettleDelay,
	}
}

// Before takes the baseline heap reading. Callers pass it to After once the
// measured operation returns; the two calls are split so the reclamation
// hint and settle delay never land inside someone else's timed section.
func (p *MemoryProbe) Before() uint64 {
	return heapAlloc()
}

// After runs the reclamation hint, takes the second heap reading, and
// returns max(0, after-before). The boolean is true when the measurement is
// degraded: either the reclamation hint was disabled, or the hint ran but
// had no observable effect on heap usage. A degraded measurement is an
// annotation, not a failure.
func (p *MemoryProbe) After(before uint64) (uint64, bool) {
	degraded := true
	if p.ReclaimHint {
		preHint := heapAlloc()
		runtime.GC()
		if p.SettleDelay > 0 {
			time.Sleep(p.SettleDelay)
		}
		// The hint observably ran only if the heap actually shrank.
		degraded = heapAlloc() >= preHint
	}

	after := heapAlloc()
	if after <= before {
		return 0, degraded
	}
	return after - before, degraded
}

// Delta wraps op between a Before and After reading. If op fails, its error
// propagates and no delta is reported.
func (p *MemoryProbe) Delta(op func() error) (uint64, bool, error) {
	before := p.Before()

	if err := op(); err != nil {
		return 0, false, err
	}

	delta, degraded := p.After(before)
	return delta, degraded, nil
}

func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}
