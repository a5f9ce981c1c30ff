package pagetable

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
//
// Get is deliberately not instrumented: it is a handful of atomic loads, and
// timing it would cost more than the operation itself.
type MetricsCollector interface {
	// RecordInsert is called after each successful insert.
	// duration is the total time taken.
	RecordInsert(duration time.Duration)

	// RecordUpdate is called after each update attempt.
	// retries is the number of same-version retries the update needed,
	// err is nil on success and an *ErrConflict on version conflict.
	RecordUpdate(duration time.Duration, retries int, err error)

	// RecordClose is called once when the table shuts down.
	// released is the number of pages handed to the release callback.
	RecordClose(released uint64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration)             {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordClose(uint64, time.Duration)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertTotalNanos atomic.Int64
	UpdateCount      atomic.Int64
	UpdateRetries    atomic.Int64
	UpdateConflicts  atomic.Int64
	UpdateTotalNanos atomic.Int64
	CloseReleased    atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(duration time.Duration, retries int, err error) {
	b.UpdateCount.Add(1)
	b.UpdateRetries.Add(int64(retries))
	b.UpdateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UpdateConflicts.Add(1)
	}
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(released uint64, duration time.Duration) {
	b.CloseReleased.Add(int64(released))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertAvgNanos:  avgNanos(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		UpdateCount:     b.UpdateCount.Load(),
		UpdateRetries:   b.UpdateRetries.Load(),
		UpdateConflicts: b.UpdateConflicts.Load(),
		UpdateAvgNanos:  avgNanos(b.UpdateTotalNanos.Load(), b.UpdateCount.Load()),
		CloseReleased:   b.CloseReleased.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount     int64
	InsertAvgNanos  int64
	UpdateCount     int64
	UpdateRetries   int64
	UpdateConflicts int64
	UpdateAvgNanos  int64
	CloseReleased   int64
}
