package sdmgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    writeCounter   prometheus.Counter
//	    readHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordWrite(activated int, duration time.Duration, err error) {
//	    p.writeCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordWrite is called after each write operation. activated is the
	// number of locations the write touched, duration is the total time
	// taken, err is nil if successful.
	RecordWrite(activated int, duration time.Duration, err error)

	// RecordRead is called after each read operation. activated is the
	// number of locations that contributed to the reconstruction.
	RecordRead(activated int, duration time.Duration, err error)

	// RecordSnapshotSave is called after each snapshot save. bytes is the
	// framed snapshot size as written.
	RecordSnapshotSave(bytes int64, duration time.Duration, err error)

	// RecordSnapshotLoad is called after each snapshot load. bytes is the
	// framed snapshot size as read.
	RecordSnapshotLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrite(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordRead(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordSnapshotSave(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshotLoad(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	WriteCount         atomic.Int64
	WriteErrors        atomic.Int64
	WriteTotalNanos    atomic.Int64
	WriteActivations   atomic.Int64
	ReadCount          atomic.Int64
	ReadErrors         atomic.Int64
	ReadTotalNanos     atomic.Int64
	ReadActivations    atomic.Int64
	SnapshotSaves      atomic.Int64
	SnapshotSaveErrors atomic.Int64
	SnapshotSaveBytes  atomic.Int64
	SnapshotLoads      atomic.Int64
	SnapshotLoadErrors atomic.Int64
	SnapshotLoadBytes  atomic.Int64
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(activated int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	b.WriteActivations.Add(int64(activated))
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(activated int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	b.ReadActivations.Add(int64(activated))
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(bytes int64, duration time.Duration, err error) {
	b.SnapshotSaves.Add(1)
	b.SnapshotSaveBytes.Add(bytes)
	if err != nil {
		b.SnapshotSaveErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(bytes int64, duration time.Duration, err error) {
	b.SnapshotLoads.Add(1)
	b.SnapshotLoadBytes.Add(bytes)
	if err != nil {
		b.SnapshotLoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		WriteCount:         b.WriteCount.Load(),
		WriteErrors:        b.WriteErrors.Load(),
		WriteAvgNanos:      avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		WriteActivations:   b.WriteActivations.Load(),
		ReadCount:          b.ReadCount.Load(),
		ReadErrors:         b.ReadErrors.Load(),
		ReadAvgNanos:       avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		ReadActivations:    b.ReadActivations.Load(),
		SnapshotSaves:      b.SnapshotSaves.Load(),
		SnapshotSaveErrors: b.SnapshotSaveErrors.Load(),
		SnapshotSaveBytes:  b.SnapshotSaveBytes.Load(),
		SnapshotLoads:      b.SnapshotLoads.Load(),
		SnapshotLoadErrors: b.SnapshotLoadErrors.Load(),
		SnapshotLoadBytes:  b.SnapshotLoadBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	WriteCount         int64
	WriteErrors        int64
	WriteAvgNanos      int64
	WriteActivations   int64
	ReadCount          int64
	ReadErrors         int64
	ReadAvgNanos       int64
	ReadActivations    int64
	SnapshotSaves      int64
	SnapshotSaveErrors int64
	SnapshotSaveBytes  int64
	SnapshotLoads      int64
	SnapshotLoadErrors int64
	SnapshotLoadBytes  int64
}
