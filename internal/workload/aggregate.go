package workload

import (
	"context"
	"runtime"
	"sync"
)

// heavyComputeRounds is the inner loop length of the toy CPU-bound function.
const heavyComputeRounds = 1000

// AggregationPair compares sequential against parallel evaluation of
// sum(f(i)) for i in [0, Size), where f is a fixed CPU-bound toy function
// expensive enough that parallel speed-up is visible. The baseline runs on
// one goroutine. The optimized variant partitions the range into chunks and
// fans them out to a bounded worker pool, then combines per-chunk partial
// sums. Integer addition is associative and commutative, so the total is
// bit-identical to the sequential result regardless of partition boundaries
// or scheduling order.
type AggregationPair struct {
	workers int
	chunks  int
}

// NewAggregationPair creates the aggregation workload. workers bounds the
// pool (<= 0 means the available hardware parallelism); chunks is the number
// of partitions of the input range (<= 0 means 4x workers).
func NewAggregationPair(workers, chunks int) *AggregationPair {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunks <= 0 {
		chunks = workers * 4
	}
	return &AggregationPair{workers: workers, chunks: chunks}
}

func (p *AggregationPair) Name() string { return NameAggregation }

func (p *AggregationPair) NeedsMemoryProbe() bool { return false }

func (p *AggregationPair) Validate(in Input) error {
	return validateSize(in.Size)
}

// Baseline evaluates the sum sequentially on the calling goroutine.
func (p *AggregationPair) Baseline(ctx context.Context, in Input) (int64, error) {
	var sum int64
	for i := 0; i < in.Size; i++ {
		sum += heavyCompute(i)
	}
	return sum, nil
}

// Optimized partitions [0, Size) into chunks and evaluates them across a
// bounded worker pool with a blocking join. Request cancellation aborts
// outstanding chunks best-effort; an aborted run returns the context error
// and never a partial sum.
func (p *AggregationPair) Optimized(ctx context.Context, in Input) (int64, error) {
	if in.Size == 0 {
		return 0, nil
	}

	chunks := p.chunks
	if chunks > in.Size {
		chunks = in.Size
	}

	partials := make([]int64, chunks)
	chunkSize := (in.Size + chunks - 1) / chunks

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)

	for c := 0; c < chunks; c++ {
		lo := c * chunkSize
		hi := lo + chunkSize
		if hi > in.Size {
			hi = in.Size
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(idx, lo, hi int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			var sum int64
			for i := lo; i < hi; i++ {
				if i&1023 == 0 && ctx.Err() != nil {
					return
				}
				sum += heavyCompute(i)
			}
			// Each chunk owns its slot, so the join needs no lock.
			partials[idx] = sum
		}(c, lo, hi)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var total int64
	for _, s := range partials {
		total += s
	}
	return total, nil
}

// heavyCompute is the fixed per-element toy function:
// f(i) = sum over k in [0,1000) of (i+k) mod 7.
func heavyCompute(i int) int64 {
	var r int64
	for k := 0; k < heavyComputeRounds; k++ {
		r += int64((i + k) % 7)
	}
	return r
}
