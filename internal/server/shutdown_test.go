package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopClosesInReverseOrder(t *testing.T) {
	l := NewLifecycle(time.Second)

	var order []string
	l.RegisterCloser(CloserFunc(func() error {
		order = append(order, "first")
		return nil
	}))
	l.RegisterCloser(CloserFunc(func() error {
		order = append(order, "second")
		return nil
	}))

	require.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLifecycle(time.Second)

	calls := 0
	l.RegisterCloser(CloserFunc(func() error {
		calls++
		return nil
	}))

	require.NoError(t, l.Stop(context.Background()))
	require.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, 1, calls)
	assert.True(t, l.Stopping())
}

func TestTrackingMiddlewareRejectsDuringShutdown(t *testing.T) {
	l := NewLifecycle(time.Second)
	h := l.TrackingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, l.Stop(context.Background()))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDrainWaitsForInFlight(t *testing.T) {
	l := NewLifecycle(2 * time.Second)

	release := make(chan struct{})
	h := l.TrackingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		close(done)
	}()

	// Wait until the request is in flight.
	require.Eventually(t, func() bool { return l.inFlight.Load() == 1 },
		time.Second, 5*time.Millisecond)

	stopDone := make(chan error, 1)
	go func() { stopDone <- l.Stop(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done

	require.NoError(t, <-stopDone)
}
