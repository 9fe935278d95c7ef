package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/pairbench/pairbench/internal/errors"
	"github.com/pairbench/pairbench/internal/observability"
	"github.com/pairbench/pairbench/internal/probe"
	"github.com/pairbench/pairbench/internal/workload"
)

// stubPair is a controllable workload pair for runner tests.
type stubPair struct {
	name        string
	needsMemory bool
	baselineErr error
	optimizeErr error
}

func (s *stubPair) Name() string           { return s.name }
func (s *stubPair) NeedsMemoryProbe() bool { return s.needsMemory }

func (s *stubPair) Validate(in workload.Input) error {
	if in.Size < 0 {
		return perrors.NewValidationError(perrors.CodeInvalidSize, "negative size")
	}
	return nil
}

func (s *stubPair) Baseline(ctx context.Context, in workload.Input) (int64, error) {
	if s.baselineErr != nil {
		return 0, s.baselineErr
	}
	return int64(in.Size), nil
}

func (s *stubPair) Optimized(ctx context.Context, in workload.Input) (int64, error) {
	if s.optimizeErr != nil {
		return 0, s.optimizeErr
	}
	return int64(in.Size), nil
}

func quietMemProbe() *probe.MemoryProbe {
	return &probe.MemoryProbe{ReclaimHint: true, SettleDelay: time.Millisecond}
}

func TestRunner_Run(t *testing.T) {
	reg := workload.NewRegistry(&stubPair{name: "stub"})
	r := New(reg, quietMemProbe(), observability.NewRunStats())

	res, err := r.Run(context.Background(), "stub", workload.VariantBaseline, workload.Input{Size: 7})
	require.NoError(t, err)

	assert.Equal(t, int64(7), res.Result)
	assert.GreaterOrEqual(t, res.ExecutionTimeMs, int64(0))
	assert.Nil(t, res.MemoryUsedBytes, "memory delta only for pairs that ask for it")
}

func TestRunner_MemoryProbeOnlyWhenRequested(t *testing.T) {
	reg := workload.NewRegistry(&stubPair{name: "memstub", needsMemory: true})
	r := New(reg, quietMemProbe(), nil)

	res, err := r.Run(context.Background(), "memstub", workload.VariantOptimized, workload.Input{Size: 3})
	require.NoError(t, err)
	require.NotNil(t, res.MemoryUsedBytes)
	assert.GreaterOrEqual(t, *res.MemoryUsedBytes, uint64(0))
}

// The reported execution time must cover only the variant itself. The
// reclamation hint and settle delay happen outside the timed section, so a
// trivial variant under a slow probe still reports near-zero elapsed time.
func TestRunner_ElapsedExcludesMemoryProbeOverhead(t *testing.T) {
	reg := workload.NewRegistry(&stubPair{name: "memstub", needsMemory: true})
	slowProbe := &probe.MemoryProbe{ReclaimHint: true, SettleDelay: 300 * time.Millisecond}
	r := New(reg, slowProbe, nil)

	res, err := r.Run(context.Background(), "memstub", workload.VariantBaseline, workload.Input{Size: 1})
	require.NoError(t, err)

	require.NotNil(t, res.MemoryUsedBytes)
	assert.Less(t, res.ExecutionTimeMs, int64(100),
		"settle delay must not be reported as variant cost")
}

func TestRunner_UnknownWorkload(t *testing.T) {
	r := New(workload.NewRegistry(), nil, nil)

	_, err := r.Run(context.Background(), "nope", workload.VariantBaseline, workload.Input{})
	require.Error(t, err)
	assert.Equal(t, perrors.CodeUnknownWorkload, perrors.GetCode(err))
}

func TestRunner_ValidatesBeforeRunning(t *testing.T) {
	reg := workload.NewRegistry(&stubPair{name: "stub"})
	r := New(reg, nil, nil)

	_, err := r.Run(context.Background(), "stub", workload.VariantBaseline, workload.Input{Size: -1})
	require.Error(t, err)
	assert.Equal(t, perrors.CodeInvalidSize, perrors.GetCode(err))
}

func TestRunner_CompareBoth(t *testing.T) {
	stats := observability.NewRunStats()
	reg := workload.NewRegistry(workload.NewLookupPair())
	r := New(reg, nil, stats)

	cmp, err := r.CompareBoth(context.Background(), workload.NameLookup,
		workload.Input{Size: 1000, Target: 999, Repeats: 50})
	require.NoError(t, err)

	assert.Equal(t, workload.NameLookup, cmp.Workload)
	assert.Equal(t, int64(50), cmp.Baseline.Result)
	assert.Equal(t, int64(50), cmp.Optimized.Result)

	snap := stats.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(1), snap[0].Runs)
}

func TestRunner_PartialComparisonIsHardFailure(t *testing.T) {
	stats := observability.NewRunStats()
	reg := workload.NewRegistry(&stubPair{
		name:        "flaky",
		optimizeErr: fmt.Errorf("optimized blew up"),
	})
	r := New(reg, nil, stats)

	cmp, err := r.CompareBoth(context.Background(), "flaky", workload.Input{Size: 5})
	require.Error(t, err)
	assert.Nil(t, cmp, "no partial comparison may be reported")
	assert.Equal(t, perrors.CodeVariantFailed, perrors.GetCode(err))

	var failures int64
	for _, vs := range stats.Snapshot() {
		failures += vs.Failures
	}
	assert.Equal(t, int64(1), failures)
}
