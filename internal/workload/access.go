package workload

import (
	"context"

	perrors "github.com/pairbench/pairbench/internal/errors"
	"github.com/pairbench/pairbench/internal/store"
)

// DataAccessPair compares per-item fetching against batched fetching of
// order items by owner. The baseline issues one store call per identifier
// (N round trips); the optimized variant issues a single IN-predicate call
// and groups the flat result in memory (one round trip, O(N) grouping).
//
// Both variants group only owners with at least one matching record, so
// their summaries agree for every input: the summary is the number of
// distinct identifiers that matched anything.
type DataAccessPair struct {
	store store.RecordStore
}

// NewDataAccessPair creates the data-access workload over the given store.
func NewDataAccessPair(rs store.RecordStore) *DataAccessPair {
	return &DataAccessPair{store: rs}
}

func (p *DataAccessPair) Name() string { return NameDataAccess }

func (p *DataAccessPair) NeedsMemoryProbe() bool { return false }

// Validate accepts any identifier sequence, including empty.
func (p *DataAccessPair) Validate(in Input) error { return nil }

// Baseline fetches each owner's items with an independent store call.
func (p *DataAccessPair) Baseline(ctx context.Context, in Input) (int64, error) {
	grouped, err := p.GroupBaseline(ctx, in.IDs)
	if err != nil {
		return 0, perrors.NewWorkloadError("per-item fetch failed", err)
	}
	return int64(len(grouped)), nil
}

// Optimized fetches all items in one batched call and groups by owner.
func (p *DataAccessPair) Optimized(ctx context.Context, in Input) (int64, error) {
	grouped, err := p.GroupOptimized(ctx, in.IDs)
	if err != nil {
		return 0, perrors.NewWorkloadError("batched fetch failed", err)
	}
	return int64(len(grouped)), nil
}

// GroupBaseline builds the per-item grouping: one store round trip per id,
// keeping only owners with at least one matching record. Exported so the
// equivalence properties can compare full groupings, not just their sizes.
func (p *DataAccessPair) GroupBaseline(ctx context.Context, ids []int64) (map[int64][]store.OrderItem, error) {
	grouped := make(map[int64][]store.OrderItem)
	for _, id := range ids {
		items, err := p.store.FindByOwnerID(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			grouped[id] = items
		}
	}
	return grouped, nil
}

// GroupOptimized builds the same grouping from a single batched round trip.
func (p *DataAccessPair) GroupOptimized(ctx context.Context, ids []int64) (map[int64][]store.OrderItem, error) {
	grouped := make(map[int64][]store.OrderItem)
	if len(ids) == 0 {
		return grouped, nil
	}

	all, err := p.store.FindByOwnerIDIn(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range all {
		grouped[item.CustomerID] = append(grouped[item.CustomerID], item)
	}
	return grouped, nil
}
