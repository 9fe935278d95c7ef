// Package store provides the record store the data-access workloads run
// against: customers and their order items backed by SQLite. Every order
// item belongs to exactly one customer; groupings are derived by callers,
// never stored.
package store

import "context"

// Customer is an owning record. Order items reference it by CustomerID.
type Customer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// OrderItem is a record owned by exactly one customer.
type OrderItem struct {
	ID             int64  `json:"id"`
	CustomerID     int64  `json:"customer_id"`
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// RecordStore is the data-access collaborator consumed by the data-access
// and cache-prefetch workloads. Calls are synchronous and cancellable at
// the boundary via ctx; there is no internal retry, since a retry would
// mask the latency differences the harness measures.
type RecordStore interface {
	// FindByOwnerID returns all order items belonging to one customer.
	FindByOwnerID(ctx context.Context, customerID int64) ([]OrderItem, error)

	// FindByOwnerIDIn returns all order items whose owner is in customerIDs,
	// in a single round trip.
	FindByOwnerIDIn(ctx context.Context, customerIDs []int64) ([]OrderItem, error)

	// FindByID returns the customer with the given id, or nil if absent.
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// FindAllByIDs returns the customers whose ids are in ids, in a single
	// round trip. Unknown ids are silently omitted.
	FindAllByIDs(ctx context.Context, ids []int64) ([]Customer, error)
}
