package workload

import (
	"context"
	"iter"
	"sync/atomic"
)

// blackhole consumes transformed values so the compiler cannot elide the
// iteration work in either variant.
var blackhole atomic.Int64

// IterationPair compares a lazily transformed sequence that mutates an
// external accumulator as a hidden side channel against one explicit pass
// building the same accumulator directly. Both variants end with an
// accumulator of length Size, which is the summary.
type IterationPair struct{}

// NewIterationPair creates the iteration workload.
func NewIterationPair() *IterationPair {
	return &IterationPair{}
}

func (p *IterationPair) Name() string { return NameIteration }

func (p *IterationPair) NeedsMemoryProbe() bool { return false }

func (p *IterationPair) Validate(in Input) error {
	return validateSize(in.Size)
}

// Baseline drains a lazy sequence whose mapping function also appends each
// element to an accumulator — the side effect rides along inside the
// transform, invisible at the consumption site.
func (p *IterationPair) Baseline(ctx context.Context, in Input) (int64, error) {
	accumulator := make([]int, 0, in.Size)

	doubled := mapped(ints(in.Size), func(i int) int {
		accumulator = append(accumulator, i)
		return i * 2
	})

	for v := range doubled {
		blackhole.Add(int64(v))
	}

	return int64(len(accumulator)), nil
}

// Optimized builds the accumulator in one explicit pass with no hidden
// mutation.
func (p *IterationPair) Optimized(ctx context.Context, in Input) (int64, error) {
	accumulator := make([]int, 0, in.Size)
	for i := 0; i < in.Size; i++ {
		accumulator = append(accumulator, i)
		blackhole.Add(int64(i * 2))
	}
	return int64(len(accumulator)), nil
}

// ints yields 0..n-1 lazily.
func ints(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// mapped lazily applies fn to each element of seq.
func mapped(seq iter.Seq[int], fn func(int) int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for v := range seq {
			if !yield(fn(v)) {
				return
			}
		}
	}
}
