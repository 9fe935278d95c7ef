package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/golang/snappy"

	perrors "github.com/pairbench/pairbench/internal/errors"
	"github.com/pairbench/pairbench/internal/storage"
)

// SeedConfig controls deterministic seeding of the record store.
type SeedConfig struct {
	// Customers is the number of customers to create, with ids 1..Customers.
	Customers int

	// ItemsFor decides how many order items customer id owns. Nil uses
	// DefaultItemsFor.
	ItemsFor func(customerID int64) int
}

// DefaultItemsFor gives a small uneven spread of item counts, including
// customers with zero items, so grouping behavior is exercised.
func DefaultItemsFor(customerID int64) int {
	return int(customerID * 3 % 7)
}

// Seed populates the store with a deterministic dataset. Safe to call on a
// store that already holds the same seed: rows are upserted by id.
func Seed(ctx context.Context, s *SQLiteStore, cfg SeedConfig) error {
	itemsFor := cfg.ItemsFor
	if itemsFor == nil {
		itemsFor = DefaultItemsFor
	}

	nextItemID := int64(1)
	for id := int64(1); id <= int64(cfg.Customers); id++ {
		c := Customer{
			ID:     id,
			Name:   fmt.Sprintf("customer-%d", id),
			Region: regionFor(id),
		}
		if err := s.InsertCustomer(ctx, c); err != nil {
			return err
		}

		for n := 0; n < itemsFor(id); n++ {
			oi := OrderItem{
				ID:             nextItemID,
				CustomerID:     id,
				SKU:            fmt.Sprintf("SKU-%04d", nextItemID%1000),
				Quantity:       n + 1,
				UnitPriceCents: 250 * (id%9 + 1),
			}
			nextItemID++
			if err := s.InsertOrderItem(ctx, oi); err != nil {
				return err
			}
		}
	}

	log.Printf("store: seeded %d customers, %d order items", cfg.Customers, nextItemID-1)
	return nil
}

// fixtureLine is one JSONL record in a seed fixture. Exactly one of the two
// fields is set per line.
type fixtureLine struct {
	Customer  *Customer  `json:"customer,omitempty"`
	OrderItem *OrderItem `json:"order_item,omitempty"`
}

// ImportFixture seeds the store from a snappy-compressed JSONL fixture
// fetched through object storage.
func ImportFixture(ctx context.Context, s *SQLiteStore, src storage.FixtureStorage, objectPath string) error {
	blob, err := src.Fetch(ctx, objectPath)
	if err != nil {
		return perrors.NewDataAccessError(perrors.CodeFixtureFetchFailed,
			fmt.Sprintf("fetch fixture %s", objectPath), err)
	}

	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return perrors.NewDataAccessError(perrors.CodeFixtureFetchFailed,
			fmt.Sprintf("decompress fixture %s", objectPath), err)
	}

	var customers, items int
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec fixtureLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return perrors.NewDataAccessError(perrors.CodeFixtureFetchFailed,
				"decode fixture line", err)
		}

		switch {
		case rec.Customer != nil:
			if err := s.InsertCustomer(ctx, *rec.Customer); err != nil {
				return err
			}
			customers++
		case rec.OrderItem != nil:
			if err := s.InsertOrderItem(ctx, *rec.OrderItem); err != nil {
				return err
			}
			items++
		}
	}
	if err := scanner.Err(); err != nil {
		return perrors.NewDataAccessError(perrors.CodeFixtureFetchFailed, "read fixture", err)
	}

	log.Printf("store: imported fixture %s (%d customers, %d order items)", objectPath, customers, items)
	return nil
}

// ExportFixture writes the deterministic seed dataset as a snappy-compressed
// JSONL fixture, so deployments can share one dataset through object storage.
func ExportFixture(ctx context.Context, dst storage.FixtureStorage, objectPath string, cfg SeedConfig) error {
	itemsFor := cfg.ItemsFor
	if itemsFor == nil {
		itemsFor = DefaultItemsFor
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	nextItemID := int64(1)
	for id := int64(1); id <= int64(cfg.Customers); id++ {
		c := Customer{
			ID:     id,
			Name:   fmt.Sprintf("customer-%d", id),
			Region: regionFor(id),
		}
		if err := enc.Encode(fixtureLine{Customer: &c}); err != nil {
			return err
		}

		for n := 0; n < itemsFor(id); n++ {
			oi := OrderItem{
				ID:             nextItemID,
				CustomerID:     id,
				SKU:            fmt.Sprintf("SKU-%04d", nextItemID%1000),
				Quantity:       n + 1,
				UnitPriceCents: 250 * (id%9 + 1),
			}
			nextItemID++
			if err := enc.Encode(fixtureLine{OrderItem: &oi}); err != nil {
				return err
			}
		}
	}

	return dst.Put(ctx, objectPath, snappy.Encode(nil, buf.Bytes()))
}

func regionFor(id int64) string {
	regions := [...]string{"us-east", "us-west", "eu-central", "ap-south"}
	return regions[id%int64(len(regions))]
}
