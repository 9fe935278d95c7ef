package workload

import (
	"context"
	"fmt"
	"sync"

	"github.com/pairbench/pairbench/internal/store"
)

// mockRecordStore is a minimal in-memory RecordStore for workload tests.
// Setting unreachable simulates the backing store going away.
type mockRecordStore struct {
	mu          sync.RWMutex
	customers   map[int64]store.Customer
	items       map[int64][]store.OrderItem
	unreachable bool
	calls       int
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{
		customers: make(map[int64]store.Customer),
		items:     make(map[int64][]store.OrderItem),
	}
}

// addCustomer registers a customer owning n order items.
func (m *mockRecordStore) addCustomer(id int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customers[id] = store.Customer{
		ID:   id,
		Name: fmt.Sprintf("customer-%d", id),
	}
	for i := 0; i < n; i++ {
		m.items[id] = append(m.items[id], store.OrderItem{
			ID:         id*1000 + int64(i),
			CustomerID: id,
			SKU:        fmt.Sprintf("SKU-%d-%d", id, i),
			Quantity:   i + 1,
		})
	}
}

func (m *mockRecordStore) setUnreachable(v bool) {
	m.mu.Lock()
	m.unreachable = v
	m.mu.Unlock()
}

func (m *mockRecordStore) callCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *mockRecordStore) check() error {
	if m.unreachable {
		return fmt.Errorf("record store unreachable")
	}
	return nil
}

func (m *mockRecordStore) FindByOwnerID(ctx context.Context, customerID int64) ([]store.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.check(); err != nil {
		return nil, err
	}
	return append([]store.OrderItem(nil), m.items[customerID]...), nil
}

func (m *mockRecordStore) FindByOwnerIDIn(ctx context.Context, customerIDs []int64) ([]store.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []store.OrderItem
	for _, id := range customerIDs {
		out = append(out, m.items[id]...)
	}
	return out, nil
}

func (m *mockRecordStore) FindByID(ctx context.Context, id int64) (*store.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.check(); err != nil {
		return nil, err
	}
	if c, ok := m.customers[id]; ok {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

func (m *mockRecordStore) FindAllByIDs(ctx context.Context, ids []int64) ([]store.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []store.Customer
	for _, id := range ids {
		if c, ok := m.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
