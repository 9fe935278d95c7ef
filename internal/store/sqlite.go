package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	perrors "github.com/pairbench/pairbench/internal/errors"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS customers (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL,
	region TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
	id               INTEGER PRIMARY KEY,
	customer_id      INTEGER NOT NULL REFERENCES customers(id),
	sku              TEXT NOT NULL,
	quantity         INTEGER NOT NULL,
	unit_price_cents INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_customer ON order_items(customer_id);
`

// SQLiteStore implements RecordStore over a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite-backed record store at the
// given path. Use ":memory:" for an ephemeral store in tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	if path == ":memory:" {
		// WAL is meaningless for in-memory databases, and a shared cache is
		// required so concurrent connections see the same data.
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeStoreUnavailable, "open record store", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, perrors.NewDataAccessError(perrors.CodeStoreUnavailable, "apply record store schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindByOwnerID returns all order items for one customer.
func (s *SQLiteStore) FindByOwnerID(ctx context.Context, customerID int64) ([]OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, sku, quantity, unit_price_cents
		 FROM order_items WHERE customer_id = ?`, customerID)
	if err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "find order items by customer", err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

// FindByOwnerIDIn returns all order items owned by any of customerIDs in a
// single query. An empty id list yields an empty result without a round trip.
func (s *SQLiteStore) FindByOwnerIDIn(ctx context.Context, customerIDs []int64) ([]OrderItem, error) {
	if len(customerIDs) == 0 {
		return []OrderItem{}, nil
	}

	query := fmt.Sprintf(
		`SELECT id, customer_id, sku, quantity, unit_price_cents
		 FROM order_items WHERE customer_id IN (%s)`,
		placeholders(len(customerIDs)))

	rows, err := s.db.QueryContext(ctx, query, int64Args(customerIDs)...)
	if err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "batch find order items", err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

// FindByID returns the customer with the given id, or nil if absent.
func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, region FROM customers WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Region)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "find customer by id", err)
	}
	return &c, nil
}

// FindAllByIDs returns the customers matching ids in a single query.
func (s *SQLiteStore) FindAllByIDs(ctx context.Context, ids []int64) ([]Customer, error) {
	if len(ids) == 0 {
		return []Customer{}, nil
	}

	query := fmt.Sprintf(
		`SELECT id, name, region FROM customers WHERE id IN (%s)`,
		placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "batch find customers", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Region); err != nil {
			return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "scan customer row", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "iterate customer rows", err)
	}

	return out, nil
}

// InsertCustomer adds one customer row. Used by seeding and fixture import.
func (s *SQLiteStore) InsertCustomer(ctx context.Context, c Customer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO customers (id, name, region) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Region)
	if err != nil {
		return perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "insert customer", err)
	}
	return nil
}

// InsertOrderItem adds one order item row. Used by seeding and fixture import.
func (s *SQLiteStore) InsertOrderItem(ctx context.Context, oi OrderItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO order_items (id, customer_id, sku, quantity, unit_price_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		oi.ID, oi.CustomerID, oi.SKU, oi.Quantity, oi.UnitPriceCents)
	if err != nil {
		return perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "insert order item", err)
	}
	return nil
}

func scanOrderItems(rows *sql.Rows) ([]OrderItem, error) {
	var out []OrderItem
	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(&oi.ID, &oi.CustomerID, &oi.SKU, &oi.Quantity, &oi.UnitPriceCents); err != nil {
			return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "scan order item row", err)
		}
		out = append(out, oi)
	}
	if err := rows.Err(); err != nil {
		return nil, perrors.NewDataAccessError(perrors.CodeCollaboratorFailure, "iterate order item rows", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
