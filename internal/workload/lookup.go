package workload

import "context"

// LookupPair compares repeated linear membership scans against a build-once
// hashed index. Both variants work over the candidate set [0, Size). The
// baseline scans the whole slice per repeat (O(Size) each); the optimized
// variant builds one map up front (O(Size)) and answers each repeat in O(1).
// The summary is the number of repeats that found Target: Repeats when
// Target is in [0, Size), otherwise 0 — identical for both variants.
type LookupPair struct{}

// NewLookupPair creates the lookup workload.
func NewLookupPair() *LookupPair {
	return &LookupPair{}
}

func (p *LookupPair) Name() string { return NameLookup }

func (p *LookupPair) NeedsMemoryProbe() bool { return false }

func (p *LookupPair) Validate(in Input) error {
	if err := validateSize(in.Size); err != nil {
		return err
	}
	return validateRepeats(in.Repeats)
}

// Baseline repeats an O(Size) linear scan per membership check.
func (p *LookupPair) Baseline(ctx context.Context, in Input) (int64, error) {
	candidates := make([]int, in.Size)
	for i := range candidates {
		candidates[i] = i
	}

	var hits int64
	for r := 0; r < in.Repeats; r++ {
		for _, v := range candidates {
			if v == in.Target {
				hits++
				break
			}
		}
	}
	return hits, nil
}

// Optimized builds one hashed index, then answers each repeat in O(1).
func (p *LookupPair) Optimized(ctx context.Context, in Input) (int64, error) {
	index := make(map[int]struct{}, in.Size)
	for i := 0; i < in.Size; i++ {
		index[i] = struct{}{}
	}

	var hits int64
	for r := 0; r < in.Repeats; r++ {
		if _, ok := index[in.Target]; ok {
			hits++
		}
	}
	return hits, nil
}
