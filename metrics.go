package typeindex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Collectors are invoked on the hot path and must be safe for concurrent use.
type MetricsCollector interface {
	// RecordAdd is called after each AddIdentity / GetIndexOrAdd.
	// created is true when a new index was assigned.
	RecordAdd(duration time.Duration, created bool, err error)

	// RecordLookup is called after each GetIndex.
	RecordLookup(found bool)

	// RecordBatch is called after each batch call with the number of keys
	// resolved.
	RecordBatch(count int, duration time.Duration, err error)

	// RecordFallback is called whenever an identity is placed in the overflow map.
	RecordFallback()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, bool, error)  {}
func (NoopMetricsCollector) RecordLookup(bool)                     {}
func (NoopMetricsCollector) RecordBatch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFallback()                       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	AddCount      atomic.Int64
	AddCreated    atomic.Int64
	AddErrors     atomic.Int64
	AddTotalNanos atomic.Int64
	LookupCount   atomic.Int64
	LookupMisses  atomic.Int64
	BatchCount    atomic.Int64
	BatchKeys     atomic.Int64
	BatchErrors   atomic.Int64
	FallbackCount atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, created bool, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if created {
		b.AddCreated.Add(1)
	}
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(found bool) {
	b.LookupCount.Add(1)
	if !found {
		b.LookupMisses.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count int, _ time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchKeys.Add(int64(count))
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback() {
	b.FallbackCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:      b.AddCount.Load(),
		AddCreated:    b.AddCreated.Load(),
		AddErrors:     b.AddErrors.Load(),
		AddAvgNanos:   b.getAvgAddNanos(),
		LookupCount:   b.LookupCount.Load(),
		LookupMisses:  b.LookupMisses.Load(),
		BatchCount:    b.BatchCount.Load(),
		BatchKeys:     b.BatchKeys.Load(),
		BatchErrors:   b.BatchErrors.Load(),
		FallbackCount: b.FallbackCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAddNanos() int64 {
	count := b.AddCount.Load()
	if count == 0 {
		return 0
	}
	return b.AddTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount      int64
	AddCreated    int64
	AddErrors     int64
	AddAvgNanos   int64
	LookupCount   int64
	LookupMisses  int64
	BatchCount    int64
	BatchKeys     int64
	BatchErrors   int64
	FallbackCount int64
}
