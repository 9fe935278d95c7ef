// Package probe provides the timing and memory measurement primitives used
// by the comparison runner. Probes wrap a synchronous operation and report
// what it cost; they carry no retry, timeout, or cancellation semantics of
// their own.
package probe

import "time"

// Time invokes op and returns its value together with the elapsed wall-clock
// time, truncated to whole milliseconds and never negative. The clock is
// monotonic (time.Since). If op fails, the failure propagates and no elapsed
// time is reported.
func Time[T any](op func() (T, error)) (T, int64, error) {
	start := time.Now()
	v, err := op()
	if err != nil {
		var zero T
		return zero, 0, err
	}

	elapsed := time.Since(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return v, elapsed, nil
}
