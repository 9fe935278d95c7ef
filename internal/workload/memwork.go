package workload

import (
	"context"
	"sync"
)

// BufferLength is the fixed size of each allocated buffer.
const BufferLength = 4096

// MemoryPair compares retained against released allocations. Both variants
// allocate Size fixed-length buffers and sum their lengths into the
// deterministic summary Size*BufferLength. The baseline parks the buffers in
// a retained sink that stays reachable past the run, so the memory probe's
// second reading still sees them and the delta stays elevated. The optimized
// variant drops every reference before returning; the probe's reclamation
// hint can then actually collect them, so the delta should trend toward
// zero — observational, never guaranteed.
//
// The retained sink is replaced on the next baseline run and cleared by the
// next optimized run, which bounds growth across requests.
type MemoryPair struct {
	mu   sync.Mutex
	sink [][]byte
}

// NewMemoryPair creates the memory workload.
func NewMemoryPair() *MemoryPair {
	return &MemoryPair{}
}

func (p *MemoryPair) Name() string { return NameMemory }

// NeedsMemoryProbe is true: this is the one pair whose results carry a
// resident-memory delta.
func (p *MemoryPair) NeedsMemoryProbe() bool { return true }

func (p *MemoryPair) Validate(in Input) error {
	return validateSize(in.Size)
}

// Baseline allocates and keeps every buffer reachable.
func (p *MemoryPair) Baseline(ctx context.Context, in Input) (int64, error) {
	buffers, sum := allocate(in.Size)

	p.mu.Lock()
	p.sink = buffers
	p.mu.Unlock()

	return sum, nil
}

// Optimized allocates, sums, and drops all references before returning.
func (p *MemoryPair) Optimized(ctx context.Context, in Input) (int64, error) {
	buffers, sum := allocate(in.Size)
	buffers = nil
	_ = buffers

	p.mu.Lock()
	p.sink = nil
	p.mu.Unlock()

	return sum, nil
}

// Retained reports how many buffers the sink currently holds.
func (p *MemoryPair) Retained() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sink)
}

func allocate(size int) ([][]byte, int64) {
	buffers := make([][]byte, 0, size)
	var sum int64
	for i := 0; i < size; i++ {
		buf := make([]byte, BufferLength)
		buffers = append(buffers, buf)
		sum += int64(len(buf))
	}
	return buffers, sum
}
