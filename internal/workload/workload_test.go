package workload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairbench/pairbench/internal/cache"
	perrors "github.com/pairbench/pairbench/internal/errors"
)

func newTestRegistry(rs *mockRecordStore) *Registry {
	return NewRegistry(
		NewDataAccessPair(rs),
		NewMemoryPair(),
		NewLookupPair(),
		NewIterationPair(),
		NewCachePair(rs, cache.NewCustomerCache(4)),
		NewAggregationPair(0, 0),
	)
}

func TestRegistry_GetKnownPairs(t *testing.T) {
	r := newTestRegistry(newMockRecordStore())

	for _, name := range []string{
		NameDataAccess, NameMemory, NameLookup,
		NameIteration, NameCache, NameAggregation,
	} {
		p, err := r.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
	}
}

func TestRegistry_UnknownWorkload(t *testing.T) {
	r := newTestRegistry(newMockRecordStore())

	_, err := r.Get("no-such-workload")
	require.Error(t, err)
	assert.Equal(t, perrors.CodeUnknownWorkload, perrors.GetCode(err))
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := newTestRegistry(newMockRecordStore())

	assert.Equal(t, []string{
		NameAggregation, NameCache, NameDataAccess,
		NameIteration, NameLookup, NameMemory,
	}, r.Names())
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("baseline")
	require.NoError(t, err)
	assert.Equal(t, VariantBaseline, v)

	v, err = ParseVariant("optimized")
	require.NoError(t, err)
	assert.Equal(t, VariantOptimized, v)

	_, err = ParseVariant("fastest")
	require.Error(t, err)
	assert.Equal(t, perrors.CodeUnknownVariant, perrors.GetCode(err))
}

func TestValidate_NegativeInputs(t *testing.T) {
	lookup := NewLookupPair()

	err := lookup.Validate(Input{Size: -1, Repeats: 5})
	require.Error(t, err)
	assert.Equal(t, perrors.CodeInvalidSize, perrors.GetCode(err))

	err = lookup.Validate(Input{Size: 10, Repeats: -1})
	require.Error(t, err)
	assert.Equal(t, perrors.CodeInvalidRepeats, perrors.GetCode(err))

	mem := NewMemoryPair()
	err = mem.Validate(Input{Size: -5})
	require.Error(t, err)
	assert.Equal(t, perrors.CodeInvalidSize, perrors.GetCode(err))
}

func TestRun_DispatchesVariant(t *testing.T) {
	ctx := context.Background()
	p := NewIterationPair()

	base, err := Run(ctx, p, VariantBaseline, Input{Size: 10})
	require.NoError(t, err)
	opt, err := Run(ctx, p, VariantOptimized, Input{Size: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(10), base)
	assert.Equal(t, int64(10), opt)

	_, err = Run(ctx, p, Variant("fastest"), Input{Size: 10})
	var pe *perrors.PairbenchError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, perrors.CodeUnknownVariant, pe.Code)
}
