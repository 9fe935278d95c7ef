package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutFetchRoundTrip(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte(`{"id":1,"name":"customer-1"}`)

	require.NoError(t, ls.Put(ctx, "fixtures/customers.jsonl.snappy", data))

	got, err := ls.Fetch(ctx, "fixtures/customers.jsonl.snappy")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStorage_FetchMissing(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Fetch(context.Background(), "no/such/object")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_Exists(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := ls.Exists(ctx, "fixtures/seed")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ls.Put(ctx, "fixtures/seed", []byte("x")))

	ok, err = ls.Exists(ctx, "fixtures/seed")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorage_PathTraversalStaysInBase(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ls.Put(ctx, "../escape", []byte("x")))

	ok, err := ls.Exists(ctx, "escape")
	require.NoError(t, err)
	assert.True(t, ok, "cleaned path should resolve inside the base directory")
}
