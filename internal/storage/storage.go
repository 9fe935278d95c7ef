// Package storage provides object storage abstractions for seed fixture
// blobs. The record store can be seeded from a snappy-compressed JSONL
// fixture fetched from the local filesystem or from S3.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrPutFailed      = errors.New("put failed")
)

// FixtureStorage abstracts object storage for fixture blobs.
// Implementations include S3 and the local filesystem for testing.
type FixtureStorage interface {
	// Fetch reads the full contents of an object.
	Fetch(ctx context.Context, objectPath string) ([]byte, error)

	// Put writes an object, overwriting any existing contents.
	Put(ctx context.Context, objectPath string, data []byte) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)
}
