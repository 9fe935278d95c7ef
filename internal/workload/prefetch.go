package workload

import (
	"context"

	"github.com/pairbench/pairbench/internal/cache"
	perrors "github.com/pairbench/pairbench/internal/errors"
	"github.com/pairbench/pairbench/internal/store"
)

// CachePair compares uncached repeated access against prefetching through
// the shared customer cache. The baseline looks up every identifier with an
// independent store call, ignoring the cache entirely. The optimized variant
// computes which identifiers the cache is missing, fetches exactly those in
// one batched call, upserts them, and serves the full answer from the cache
// in the caller's requested order, silently dropping identifiers that do
// not exist. The summary is the count of resolved records for both variants.
//
// The cache is shared across concurrent requests; racing resolutions of the
// same missing set produce duplicate idempotent upserts, never corruption.
// Once an identifier is cached, later runs resolve it without touching the
// backing store at all.
type CachePair struct {
	store store.RecordStore
	cache *cache.CustomerCache
}

// NewCachePair creates the cache workload over the given store and the
// process-wide customer cache.
func NewCachePair(rs store.RecordStore, cc *cache.CustomerCache) *CachePair {
	return &CachePair{store: rs, cache: cc}
}

func (p *CachePair) Name() string { return NameCache }

func (p *CachePair) NeedsMemoryProbe() bool { return false }

// Validate accepts any identifier sequence, including empty.
func (p *CachePair) Validate(in Input) error { return nil }

// Baseline resolves every identifier with an independent store call.
func (p *CachePair) Baseline(ctx context.Context, in Input) (int64, error) {
	var resolved int64
	for _, id := range in.IDs {
		c, err := p.store.FindByID(ctx, id)
		if err != nil {
			return 0, perrors.NewWorkloadError("uncached lookup failed", err)
		}
		if c != nil {
			resolved++
		}
	}
	return resolved, nil
}

// Optimized batch-fetches only the identifiers the cache is missing, then
// serves the whole answer from the cache.
func (p *CachePair) Optimized(ctx context.Context, in Input) (int64, error) {
	if missing := p.cache.Missing(in.IDs); len(missing) > 0 {
		found, err := p.store.FindAllByIDs(ctx, missing)
		if err != nil {
			return 0, perrors.NewWorkloadError("prefetch failed", err)
		}
		p.cache.PutAll(found)
	}

	var resolved int64
	for _, id := range in.IDs {
		if _, ok := p.cache.Get(id); ok {
			resolved++
		}
	}
	return resolved, nil
}

// Resolve returns the cached customers for ids in request order, dropping
// identifiers that do not exist. Used by tests asserting order preservation.
func (p *CachePair) Resolve(ctx context.Context, ids []int64) ([]store.Customer, error) {
	if _, err := p.Optimized(ctx, Input{IDs: ids}); err != nil {
		return nil, err
	}

	out := make([]store.Customer, 0, len(ids))
	for _, id := range ids {
		if c, ok := p.cache.Get(id); ok {
			out = append(out, c)
		}
	}
	return out, nil
}
