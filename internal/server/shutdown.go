// Package server provides HTTP server lifecycle management with graceful
// shutdown. Benchmark runs can hold a request open for a long time, so
// shutdown drains in-flight runs before closing resources.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Lifecycle coordinates signal handling, in-flight request draining and
// resource cleanup for the pairbench server.
type Lifecycle struct {
	drainTimeout time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	inFlight atomic.Int64
	stopping atomic.Bool

	mu      sync.Mutex
	closers []io.Closer
}

// DefaultDrainTimeout bounds how long shutdown waits for in-flight
// benchmark runs to finish.
const DefaultDrainTimeout = 30 * time.Second

// NewLifecycle creates a lifecycle manager. A zero drainTimeout selects
// DefaultDrainTimeout.
func NewLifecycle(drainTimeout time.Duration) *Lifecycle {
	if drainTimeout == 0 {
		drainTimeout = DefaultDrainTimeout
	}
	return &Lifecycle{
		drainTimeout: drainTimeout,
		stopCh:       make(chan struct{}),
	}
}

// RegisterCloser adds a resource to close during shutdown. Closers run in
// reverse registration order.
func (l *Lifecycle) RegisterCloser(c io.Closer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closers = append(l.closers, c)
}

// CloserFunc adapts a function to io.Closer.
type CloserFunc func() error

// Close calls the underlying function.
func (f CloserFunc) Close() error { return f() }

// WaitForSignal blocks until SIGTERM, SIGINT, context cancellation or an
// explicit Stop, then performs shutdown.
func (l *Lifecycle) WaitForSignal(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
	case <-l.stopCh:
		return nil
	}
	return l.Stop(ctx)
}

// Stop drains in-flight requests and closes registered resources. Safe to
// call more than once.
func (l *Lifecycle) Stop(ctx context.Context) error {
	var stopErr error

	l.stopOnce.Do(func() {
		l.stopping.Store(true)
		close(l.stopCh)

		if err := l.drain(ctx); err != nil {
			stopErr = err
		}

		l.mu.Lock()
		closers := l.closers
		l.mu.Unlock()

		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil && stopErr == nil {
				stopErr = fmt.Errorf("close failed: %w", err)
			}
		}
	})

	return stopErr
}

func (l *Lifecycle) drain(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(ctx, l.drainTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.inFlight.Load() > 0 {
		select {
		case <-drainCtx.Done():
			if n := l.inFlight.Load(); n > 0 {
				return fmt.Errorf("timed out waiting for %d in-flight requests", n)
			}
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// Stopping reports whether shutdown has started.
func (l *Lifecycle) Stopping() bool {
	return l.stopping.Load()
}

// StopCh returns a channel closed when shutdown begins.
func (l *Lifecycle) StopCh() <-chan struct{} {
	return l.stopCh
}

// TrackingMiddleware counts in-flight requests and rejects new ones once
// shutdown has begun.
func (l *Lifecycle) TrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.stopping.Load() {
			w.Header().Set("Connection", "close")
			http.Error(w, "service shutting down", http.StatusServiceUnavailable)
			return
		}
		l.inFlight.Add(1)
		defer l.inFlight.Add(-1)

		next.ServeHTTP(w, r)
	})
}

// Serve runs the HTTP server until shutdown is initiated or the listener
// fails. The server itself is registered for graceful close.
func (l *Lifecycle) Serve(srv *http.Server) error {
	l.RegisterCloser(CloserFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-l.stopCh:
		return <-errCh
	}
}
