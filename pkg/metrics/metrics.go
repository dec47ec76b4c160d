// Package metrics provides Prometheus instrumentation for the table store.
//
// # Basic Usage
//
//	// Count rows handed to a writer
//	metrics.RowsWritten.WithLabelValues("orc").Inc()
//
//	// Time a batch flush
//	timer := metrics.NewTimer()
//	flush(batch)
//	metrics.BatchFlushSeconds.WithLabelValues("orc").Observe(timer.Stop().Seconds())
//
// All vectors are registered with the default registry on package load.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Direction label values for Batches
const (
	DirectionWrite = "write"
	DirectionRead  = "read"
)

var (
	// RowsWritten tracks rows flushed to table files by table writers.
	// Labels: format (orc/parquet)
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_rows_written_total",
			Help: "Total number of rows written to table files",
		},
		[]string{"format"},
	)

	// RowsRead tracks rows handed out by table readers.
	// Labels: format (orc/parquet)
	RowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_rows_read_total",
			Help: "Total number of rows read from table files",
		},
		[]string{"format"},
	)

	// Batches tracks column batches moved between memory and the container.
	// Labels: format, direction (write/read)
	Batches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_batches_total",
			Help: "Total number of column batches flushed or pulled",
		},
		[]string{"format", "direction"},
	)

	// BatchFlushSeconds tracks the time spent handing one batch to the
	// container writer.
	BatchFlushSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tablestore_batch_flush_seconds",
			Help: "Time spent flushing a column batch to the container writer",
			Buckets: []float64{
				1e-5, // 10μs
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms
				1e-1, // 100ms
				1,    // 1s
			},
		},
		[]string{"format"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
