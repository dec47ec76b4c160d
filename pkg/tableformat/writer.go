package tableformat

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/logger"
	"github.com/ajitpratap0/tablestore/pkg/metrics"
)

// WriterConfig holds the parameters of a table writer. Container tuning
// (codec, stripe and row group sizes) is fixed.
type WriterConfig struct {
	Format      Format
	Capacity    int
	WriteRowKey bool
	Logger      *zap.Logger
}

// DefaultWriterConfig returns an ORC configuration with the default batch
// capacity and no row key column.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		Format:   ORC,
		Capacity: DefaultBatchCapacity,
	}
}

type writerState int

const (
	writerCreated writerState = iota
	writerOpen
	writerClosed
)

func (s writerState) String() string {
	switch s {
	case writerCreated:
		return "created"
	case writerOpen:
		return "open"
	case writerClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Writer accumulates rows into a batch and hands every full batch to the
// container writer. A Writer is used by one goroutine and writes one file.
type Writer struct {
	schema Schema
	config WriterConfig
	logger *zap.Logger

	state   writerState
	path    string
	sink    batchSink
	batch   *Batch
	encoder *RowEncoder
	err     error

	rows    int64
	batches int64

	rowsCounter  prometheus.Counter
	batchCounter prometheus.Counter
	flushSeconds prometheus.Observer
}

// NewWriter validates schema and cfg and returns a writer in the created
// state.
func NewWriter(schema Schema, cfg WriterConfig) (*Writer, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if cfg.Format == "" {
		cfg.Format = ORC
	}
	if _, err := ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultBatchCapacity
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Named("tableformat")
	}

	format := string(cfg.Format)
	return &Writer{
		schema:       schema,
		config:       cfg,
		logger:       log.With(zap.String("format", format)),
		rowsCounter:  metrics.RowsWritten.WithLabelValues(format),
		batchCounter: metrics.Batches.WithLabelValues(format, metrics.DirectionWrite),
		flushSeconds: metrics.BatchFlushSeconds.WithLabelValues(format),
	}, nil
}

// Create is NewWriter followed by Open.
func Create(path string, schema Schema, cfg WriterConfig) (*Writer, error) {
	w, err := NewWriter(schema, cfg)
	if err != nil {
		return nil, err
	}
	if err := w.Open(path); err != nil {
		return nil, err
	}
	return w, nil
}

// Open creates the table file at path. An existing file at path is
// replaced.
func (w *Writer) Open(path string) error {
	if w.state != writerCreated {
		return w.stateError("open")
	}

	// A failed remove is not reported; the create below fails instead if the
	// path really is unusable.
	_ = os.Remove(path)

	cols := physicalLayout(w.schema, w.config.WriteRowKey)
	sink, err := openSink(w.config.Format, path, cols)
	if err != nil {
		return err
	}
	w.path = path
	w.start(sink)

	w.logger.Debug("table writer opened",
		zap.String("path", path),
		zap.Strings("columns", physicalNames(cols)),
		zap.Int("capacity", w.config.Capacity))
	return nil
}

// start moves the writer to the open state around an already opened sink.
func (w *Writer) start(sink batchSink) {
	w.sink = sink
	w.batch = NewSchemaBatch(w.schema, w.config.WriteRowKey, w.config.Capacity)
	w.encoder = NewRowEncoder(w.schema, w.config.WriteRowKey)
	w.state = writerOpen
}

// WriteRow encodes row into the current batch, flushing the batch to the
// file when it is full. A row rejected by the encoder is not written and
// the writer stays usable. After a file error every further call fails.
func (w *Writer) WriteRow(row Row) error {
	if w.state != writerOpen {
		return w.stateError("write to")
	}
	if w.err != nil {
		return errors.Wrap(w.err, errors.ErrorTypeState, "writer failed on an earlier batch")
	}

	if err := w.encoder.WriteRow(w.batch, w.batch.Size, row); err != nil {
		return err
	}
	w.batch.Size++

	if w.batch.Full() {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if w.batch.Size == 0 {
		return nil
	}

	size := w.batch.Size
	timer := metrics.NewTimer()
	if err := w.sink.WriteBatch(w.batch); err != nil {
		w.err = err
		return err
	}
	w.flushSeconds.Observe(timer.Stop().Seconds())
	w.rows += int64(size)
	w.rowsCounter.Add(float64(size))
	w.batches++
	w.batchCounter.Inc()

	w.logger.Debug("batch flushed",
		zap.Int("rows", size),
		zap.Int64("batches", w.batches))
	w.batch.Reset()
	return nil
}

// Close flushes the partial batch and closes the file. The writer is
// closed afterwards even when an error is returned.
func (w *Writer) Close() error {
	if w.state != writerOpen {
		return w.stateError("close")
	}
	w.state = writerClosed

	var flushErr error
	if w.err == nil {
		flushErr = w.flush()
	}
	closeErr := w.sink.Close()
	w.batch = nil

	w.logger.Debug("table writer closed",
		zap.String("path", w.path),
		zap.Int64("rows", w.rows),
		zap.Int64("batches", w.batches))

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// WriteMetadata records the schema, container format and row key flag in
// dst. The tree it writes is what ReadTableInfo and Reader.Open expect.
func (w *Writer) WriteMetadata(dst *Settings) error {
	if w.state != writerClosed {
		return errors.Newf(errors.ErrorTypeState, "metadata can only be written after close, writer is %s", w.state)
	}
	if dst == nil {
		return errors.New(errors.ErrorTypeValidation, "metadata destination is nil")
	}
	writeTableInfo(dst, w.Info())
	return nil
}

// Info describes the table this writer produces.
func (w *Writer) Info() TableInfo {
	return TableInfo{Schema: w.schema, Format: w.config.Format, RowKey: w.config.WriteRowKey}
}

// Schema returns the schema rows are written with.
func (w *Writer) Schema() Schema { return w.schema }

// Path returns the file path passed to Open.
func (w *Writer) Path() string { return w.path }

// RowsWritten returns the number of rows handed to the container in
// flushed batches. Rows still buffered in the current batch are not counted.
func (w *Writer) RowsWritten() int64 { return w.rows }

// BatchesFlushed returns the number of batches handed to the container.
func (w *Writer) BatchesFlushed() int64 { return w.batches }

func (w *Writer) stateError(op string) error {
	return errors.Newf(errors.ErrorTypeState, "cannot %s writer in %s state", op, w.state).
		WithDetail("path", w.path)
}
