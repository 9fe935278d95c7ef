// Package cache provides the process-wide prefetch cache used by the
// cache workload pair.
//
// CustomerCache distributes entries across N mutex-guarded shards selected
// by murmur3 hash of the customer id, so concurrent requests contend on
// different shards instead of one lock. The cache is unbounded and has no
// TTL or eviction: once a key is present it is never invalidated by this
// subsystem. Staleness against the backing store is an accepted, documented
// limitation, not a bug — entries live until process restart.
package cache

import (
	"encoding/binary"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/pairbench/pairbench/internal/store"
)

// DefaultShardCount is the default number of cache shards.
const DefaultShardCount = 16

type shard struct {
	mu      sync.RWMutex
	entries map[int64]store.Customer
}

// CustomerCache is a concurrency-safe customer-id keyed cache. Writes of the
// same key are idempotent upserts: two requests racing to resolve the same
// missing id both succeed, the second write simply overwriting an equal value.
type CustomerCache struct {
	shards     []*shard
	shardCount uint32
}

// NewCustomerCache creates an empty cache with the given shard count.
// Tests construct a fresh instance per case; the application constructs
// exactly one for the process lifetime.
func NewCustomerCache(shardCount int) *CustomerCache {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}

	c := &CustomerCache{
		shards:     make([]*shard, shardCount),
		shardCount: uint32(shardCount),
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[int64]store.Customer)}
	}
	return c
}

// shardFor returns the shard owning a customer id.
func (c *CustomerCache) shardFor(id int64) *shard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))
	return c.shards[murmur3.Sum32(buf[:])%c.shardCount]
}

// Get returns the cached customer for id, if present.
func (c *CustomerCache) Get(id int64) (store.Customer, bool) {
	s := c.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	cust, ok := s.entries[id]
	return cust, ok
}

// Put upserts one customer. Duplicate writes of the same key are tolerated.
func (c *CustomerCache) Put(cust store.Customer) {
	s := c.shardFor(cust.ID)
	s.mu.Lock()
	s.entries[cust.ID] = cust
	s.mu.Unlock()
}

// PutAll upserts a batch of customers.
func (c *CustomerCache) PutAll(customers []store.Customer) {
	for _, cust := range customers {
		c.Put(cust)
	}
}

// Missing returns the subset of ids not currently cached, preserving order.
// The answer is advisory: another request may populate a key between this
// call and a subsequent Put, which is harmless given idempotent upserts.
func (c *CustomerCache) Missing(ids []int64) []int64 {
	var missing []int64
	for _, id := range ids {
		if _, ok := c.Get(id); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Len returns the total number of cached entries.
func (c *CustomerCache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}
