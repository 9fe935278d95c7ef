// Package workload defines the workload-pair contract and the six built-in
// pairs the harness compares. Each pair exposes a baseline and an optimized
// implementation of one logical operation over a shared input type; both
// produce a small scalar summary so results stay cheap to compare and
// JSON-safe. Given the same input and backing store contents, variants are
// deterministic — the cache pair being the documented exception, since it
// reads through the process-wide prefetch cache.
package workload

import (
	"context"
	"fmt"
	"sort"

	perrors "github.com/pairbench/pairbench/internal/errors"
)

// Workload names registered by NewRegistry.
const (
	NameDataAccess  = "data-access"
	NameMemory      = "memory"
	NameLookup      = "lookup"
	NameIteration   = "iteration"
	NameCache       = "cache"
	NameAggregation = "aggregation"
)

// Variant selects which side of a pair to run.
type Variant string

const (
	VariantBaseline  Variant = "baseline"
	VariantOptimized Variant = "optimized"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantBaseline, VariantOptimized:
		return Variant(s), nil
	default:
		return "", perrors.NewValidationError(perrors.CodeUnknownVariant,
			fmt.Sprintf("unknown variant %q", s))
	}
}

// Input carries the variant-specific parameters for a run. Pairs read only
// the fields they declare; Validate enforces the constraints before any
// workload code runs.
type Input struct {
	// IDs is the identifier sequence for the data-access and cache pairs.
	// May be empty.
	IDs []int64

	// Size is the magnitude for the memory, lookup, iteration, and
	// aggregation pairs. Must be >= 0.
	Size int

	// Target is the lookup target.
	Target int

	// Repeats is the lookup repetition count. Must be >= 0.
	Repeats int
}

// Pair is one named workload with two comparable implementations.
type Pair interface {
	// Name returns the registry name of the pair.
	Name() string

	// Validate rejects inputs violating the pair's constraints. It runs
	// before either variant and its failures surface as client errors.
	Validate(in Input) error

	// Baseline runs the unoptimized implementation.
	Baseline(ctx context.Context, in Input) (int64, error)

	// Optimized runs the improved implementation.
	Optimized(ctx context.Context, in Input) (int64, error)

	// NeedsMemoryProbe reports whether runs of this pair should carry a
	// resident-memory delta in their results.
	NeedsMemoryProbe() bool
}

// Run dispatches to the selected variant of a pair.
func Run(ctx context.Context, p Pair, v Variant, in Input) (int64, error) {
	switch v {
	case VariantBaseline:
		return p.Baseline(ctx, in)
	case VariantOptimized:
		return p.Optimized(ctx, in)
	default:
		return 0, perrors.NewValidationError(perrors.CodeUnknownVariant,
			fmt.Sprintf("unknown variant %q", v))
	}
}

// Registry holds the named workload pairs available to the runner.
type Registry struct {
	pairs map[string]Pair
}

// NewRegistry creates a registry containing the given pairs.
func NewRegistry(pairs ...Pair) *Registry {
	r := &Registry{pairs: make(map[string]Pair, len(pairs))}
	for _, p := range pairs {
		r.pairs[p.Name()] = p
	}
	return r
}

// Get returns the pair registered under name.
func (r *Registry) Get(name string) (Pair, error) {
	p, ok := r.pairs[name]
	if !ok {
		return nil, perrors.NewValidationError(perrors.CodeUnknownWorkload,
			fmt.Sprintf("unknown workload %q", name))
	}
	return p, nil
}

// Names returns the registered workload names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pairs))
	for name := range r.pairs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateSize rejects negative sizes.
func validateSize(size int) error {
	if size < 0 {
		return perrors.NewValidationError(perrors.CodeInvalidSize,
			fmt.Sprintf("size must be non-negative, got %d", size))
	}
	return nil
}

// validateRepeats rejects negative repeat counts.
func validateRepeats(repeats int) error {
	if repeats < 0 {
		return perrors.NewValidationError(perrors.CodeInvalidRepeats,
			fmt.Sprintf("repeats must be non-negative, got %d", repeats))
	}
	return nil
}
