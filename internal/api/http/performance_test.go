package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairbench/pairbench/internal/cache"
	"github.com/pairbench/pairbench/internal/observability"
	"github.com/pairbench/pairbench/internal/probe"
	"github.com/pairbench/pairbench/internal/runner"
	"github.com/pairbench/pairbench/internal/store"
	"github.com/pairbench/pairbench/internal/workload"
)

// fakeStore is a minimal in-memory RecordStore for handler tests.
type fakeStore struct {
	customers map[int64]store.Customer
	items     map[int64][]store.OrderItem
}

func newFakeStore() *fakeStore {
	fs := &fakeStore{
		customers: make(map[int64]store.Customer),
		items:     make(map[int64][]store.OrderItem),
	}
	// Customer 1 has 2 items, 2 has 0, 3 has 5.
	for id, n := range map[int64]int{1: 2, 2: 0, 3: 5} {
		fs.customers[id] = store.Customer{ID: id, Name: fmt.Sprintf("customer-%d", id)}
		for i := 0; i < n; i++ {
			fs.items[id] = append(fs.items[id], store.OrderItem{
				ID:         id*100 + int64(i),
				CustomerID: id,
			})
		}
	}
	return fs
}

func (f *fakeStore) FindByOwnerID(ctx context.Context, id int64) ([]store.OrderItem, error) {
	return f.items[id], nil
}

func (f *fakeStore) FindByOwnerIDIn(ctx context.Context, ids []int64) ([]store.OrderItem, error) {
	var out []store.OrderItem
	for _, id := range ids {
		out = append(out, f.items[id]...)
	}
	return out, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id int64) (*store.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) FindAllByIDs(ctx context.Context, ids []int64) ([]store.Customer, error) {
	var out []store.Customer
	for _, id := range ids {
		if c, ok := f.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	rs := newFakeStore()
	reg := workload.NewRegistry(
		workload.NewDataAccessPair(rs),
		workload.NewMemoryPair(),
		workload.NewLookupPair(),
		workload.NewIterationPair(),
		workload.NewCachePair(rs, cache.NewCustomerCache(4)),
		workload.NewAggregationPair(2, 4),
	)

	memProbe := &probe.MemoryProbe{ReclaimHint: true, SettleDelay: time.Millisecond}
	run := runner.New(reg, memProbe, observability.NewRunStats())

	srv := httptest.NewServer(NewServeMux(run))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) (int, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func postJSON(t *testing.T, url, payload string) (int, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func intField(t *testing.T, body map[string]json.RawMessage, key string) int64 {
	t.Helper()
	raw, ok := body[key]
	require.True(t, ok, "missing field %q", key)
	var v int64
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestLookupEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, action := range []string{"before", "after"} {
		status, body := getJSON(t,
			srv.URL+"/api/performance/lookup/"+action+"?size=100000&target=99999&repeats=500")
		require.Equal(t, http.StatusOK, status, action)

		assert.Equal(t, int64(500), intField(t, body, "result"))
		assert.GreaterOrEqual(t, intField(t, body, "executionTimeMs"), int64(0))
		_, hasMem := body["memoryUsedBytes"]
		assert.False(t, hasMem, "only the memory workload reports a memory delta")
	}
}

func TestLookupMiss(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t,
		srv.URL+"/api/performance/lookup/after?size=100000&target=100000&repeats=500")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), intField(t, body, "result"))
}

func TestMemoryEndpointReportsDelta(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/api/performance/memory/before?size=100")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, int64(100*4096), intField(t, body, "result"))
	_, hasMem := body["memoryUsedBytes"]
	assert.True(t, hasMem)
	assert.GreaterOrEqual(t, intField(t, body, "memoryUsedBytes"), int64(0))
}

func TestDataAccessEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, action := range []string{"before", "after"} {
		status, body := postJSON(t, srv.URL+"/api/performance/data-access/"+action, "[1,2,3]")
		require.Equal(t, http.StatusOK, status, action)
		assert.Equal(t, int64(2), intField(t, body, "result"),
			"only owners with at least one item appear in the grouping")
	}
}

func TestCacheEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/api/performance/cache/before", "[1,2,3,404]")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(3), intField(t, body, "result"))

	status, body = postJSON(t, srv.URL+"/api/performance/cache/after", "[1,2,3,404]")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(3), intField(t, body, "result"))
}

func TestIterationDefaults(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/api/performance/iteration/after?size=10")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(10), intField(t, body, "result"))
}

func TestCompareEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/api/performance/aggregation/compare?size=2000")
	require.Equal(t, http.StatusOK, status)

	var baseline, optimized struct {
		Result int64 `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body["baseline"], &baseline))
	require.NoError(t, json.Unmarshal(body["optimized"], &optimized))
	assert.Equal(t, baseline.Result, optimized.Result, "sums must be bit-identical")
}

func TestMalformedIDList(t *testing.T) {
	srv := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/api/performance/data-access/before", `{"ids":[1]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	var code string
	require.NoError(t, json.Unmarshal(body["code"], &code))
	assert.Equal(t, "MALFORMED_ID_LIST", code)
}

func TestNegativeSizeRejected(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/api/performance/memory/before?size=-1")
	assert.Equal(t, http.StatusBadRequest, status)

	var code string
	require.NoError(t, json.Unmarshal(body["code"], &code))
	assert.Equal(t, "INVALID_SIZE", code)
}

func TestMalformedQueryParamsNameTheField(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"bad size", "size=many", "INVALID_SIZE"},
		{"bad target", "target=bullseye", "INVALID_TARGET"},
		{"bad repeats", "repeats=lots", "INVALID_REPEATS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := getJSON(t, srv.URL+"/api/performance/lookup/before?"+tc.query)
			assert.Equal(t, http.StatusBadRequest, status)

			var code string
			require.NoError(t, json.Unmarshal(body["code"], &code))
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestUnknownWorkload(t *testing.T) {
	srv := newTestServer(t)

	status, _ := getJSON(t, srv.URL+"/api/performance/sorting/before")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, _ = getJSON(t, srv.URL+"/api/performance/lookup/before?size=100&target=5&repeats=2")

	status, body := getJSON(t, srv.URL+"/v1/stats")
	require.Equal(t, http.StatusOK, status)

	var workloads []string
	require.NoError(t, json.Unmarshal(body["workloads"], &workloads))
	assert.Contains(t, workloads, "lookup")

	var variants []map[string]interface{}
	require.NoError(t, json.Unmarshal(body["variants"], &variants))
	require.NotEmpty(t, variants)
	assert.Equal(t, "lookup", variants[0]["workload"])
}
