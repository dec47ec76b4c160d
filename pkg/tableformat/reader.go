package tableformat

import (
	stderrors "errors"
	"iter"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/logger"
	"github.com/ajitpratap0/tablestore/pkg/metrics"
)

// ErrEndOfTable is returned by Reader.Next once every row has been read.
var ErrEndOfTable = stderrors.New("tableformat: end of table")

// ReaderConfig holds the parameters of a table reader. Format and
// RowKeyPresent must match what the file was written with; ReaderConfigFor
// takes them from side-car metadata.
type ReaderConfig struct {
	Format        Format
	Capacity      int
	RowKeyPresent bool
	Logger        *zap.Logger
}

// DefaultReaderConfig returns an ORC configuration with the default batch
// capacity and no row key column.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Format:   ORC,
		Capacity: DefaultBatchCapacity,
	}
}

// ReaderConfigFor returns the default configuration adjusted to info.
func ReaderConfigFor(info TableInfo) ReaderConfig {
	cfg := DefaultReaderConfig()
	cfg.Format = info.Format
	cfg.RowKeyPresent = info.RowKey
	return cfg
}

type readerState int

const (
	readerCreated readerState = iota
	readerOpen
	readerClosed
)

func (s readerState) String() string {
	switch s {
	case readerCreated:
		return "created"
	case readerOpen:
		return "open"
	case readerClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reader iterates the rows of a table file in order, one batch in memory at
// a time. The next batch is pulled as soon as the current one is used up,
// so HasNext never touches the file.
type Reader struct {
	config ReaderConfig
	logger *zap.Logger

	state  readerState
	path   string
	schema Schema
	source batchSource

	// cur is the batch rows are served from; spare receives the next pull
	// while views into cur may still be live.
	cur     *Batch
	spare   *Batch
	row     int
	done    bool
	pendErr error
	view    RowView
	int32s  []int

	rows int64

	rowsCounter  prometheus.Counter
	batchCounter prometheus.Counter
}

// NewReader validates cfg and returns a reader in the created state.
func NewReader(cfg ReaderConfig) (*Reader, error) {
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
	return &Reader{
		config:       cfg,
		logger:       log.With(zap.String("format", format)),
		rowsCounter:  metrics.RowsRead.WithLabelValues(format),
		batchCounter: metrics.Batches.WithLabelValues(format, metrics.DirectionRead),
	}, nil
}

// OpenTable opens the table at path using the side-car file next to it.
func OpenTable(path string) (*Reader, error) {
	meta, err := LoadSettings(SidecarPath(path))
	if err != nil {
		return nil, err
	}
	info, err := ReadTableInfo(meta)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(ReaderConfigFor(info))
	if err != nil {
		return nil, err
	}
	if err := r.Open(path, meta); err != nil {
		return nil, err
	}
	return r, nil
}

// Open restores the schema from metadata, opens the file and reads the
// first batch. metadata is either the tree written by Writer.WriteMetadata
// or a bare column tree from Serialize.
func (r *Reader) Open(path string, metadata *Settings) error {
	if r.state != readerCreated {
		return r.stateError("open")
	}

	columns := metadata
	if metadata != nil && metadata.Has(metaColumnsKey) {
		sub, err := metadata.GetSettings(metaColumnsKey)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "bad column metadata")
		}
		columns = sub
	}
	schema, err := Deserialize(columns)
	if err != nil {
		return err
	}

	cols := physicalLayout(schema, r.config.RowKeyPresent)
	source, err := openSource(r.config.Format, path, cols, r.config.Capacity)
	if err != nil {
		return err
	}
	r.path = path
	if err := r.start(source, schema); err != nil {
		_ = source.Close()
		r.state = readerClosed
		return err
	}

	r.logger.Debug("table reader opened",
		zap.String("path", path),
		zap.Strings("columns", physicalNames(cols)),
		zap.Int("capacity", r.config.Capacity))
	return nil
}

// start moves the reader to the open state around an opened source and
// pulls the first batch.
func (r *Reader) start(source batchSource, schema Schema) error {
	r.source = source
	r.schema = schema
	r.cur = NewSchemaBatch(schema, r.config.RowKeyPresent, r.config.Capacity)
	r.spare = NewSchemaBatch(schema, r.config.RowKeyPresent, r.config.Capacity)

	offset := 0
	if r.config.RowKeyPresent {
		offset = 1
	}
	types := make([]LogicalType, len(schema.Columns))
	r.int32s = r.int32s[:0]
	for i, c := range schema.Columns {
		types[i] = c.Type
		if c.Type == LogicalInt32 {
			r.int32s = append(r.int32s, i+offset)
		}
	}
	r.view = RowView{types: types, offset: offset, hasKey: r.config.RowKeyPresent}
	r.state = readerOpen

	status, err := source.Pull(r.cur)
	switch status {
	case pullMore:
		r.batchCounter.Inc()
	case pullEnd:
		r.done = true
	case pullFailed:
		return err
	}
	return nil
}

// HasNext reports whether Next returns something other than ErrEndOfTable:
// a row, or a read error held back from the previous batch pull.
func (r *Reader) HasNext() bool {
	if r.state != readerOpen {
		return false
	}
	return r.row < r.cur.Size || r.pendErr != nil
}

// Next returns the next row. The view stays valid until the following call
// to Next. At the end of the table Next returns ErrEndOfTable. A row whose
// 32-bit integer column holds a value that does not fit fails with a
// numeric overflow error; iteration can continue past it.
func (r *Reader) Next() (*RowView, error) {
	if r.state != readerOpen {
		return nil, r.stateError("read from")
	}
	if r.row >= r.cur.Size {
		if r.pendErr != nil {
			err := r.pendErr
			r.pendErr = nil
			return nil, err
		}
		return nil, ErrEndOfTable
	}

	batch, row := r.cur, r.row
	r.row++
	if r.row >= r.cur.Size && !r.done {
		r.pull()
	}

	if err := r.checkRow(batch, row); err != nil {
		return nil, err
	}
	r.view.batch = batch
	r.view.row = row
	r.rows++
	r.rowsCounter.Inc()
	return &r.view, nil
}

// pull reads the next batch into spare and swaps it in. The batch just
// served stays intact in spare until the pull after this one.
func (r *Reader) pull() {
	status, err := r.source.Pull(r.spare)
	switch status {
	case pullMore:
		r.cur, r.spare = r.spare, r.cur
		r.row = 0
		r.batchCounter.Inc()
		r.logger.Debug("batch pulled", zap.Int("rows", r.cur.Size))
	case pullEnd:
		r.done = true
	case pullFailed:
		r.done = true
		r.pendErr = err
		r.logger.Debug("batch pull failed", zap.Error(err))
	}
}

// checkRow verifies every 32-bit integer column of row fits its type.
func (r *Reader) checkRow(b *Batch, row int) error {
	for _, c := range r.int32s {
		v := b.Columns[c]
		pos, ok := v.position(row)
		if !ok {
			continue
		}
		if _, err := narrowInt32(v.Longs[pos], r.schema.Columns[c-r.view.offset].Name); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns an iterator over the remaining rows. Overflowing rows are
// yielded with their error and iteration continues; any other error ends
// it after being yielded.
func (r *Reader) Rows() iter.Seq2[*RowView, error] {
	return func(yield func(*RowView, error) bool) {
		for {
			v, err := r.Next()
			if stderrors.Is(err, ErrEndOfTable) {
				return
			}
			if !yield(v, err) {
				return
			}
			if err != nil && !errors.IsType(err, errors.ErrorTypeNumericOverflow) {
				return
			}
		}
	}
}

// Close releases the file. Calling Close twice fails.
func (r *Reader) Close() error {
	if r.state != readerOpen {
		return r.stateError("close")
	}
	r.state = readerClosed
	r.cur, r.spare = nil, nil
	r.view.batch = nil

	r.logger.Debug("table reader closed",
		zap.String("path", r.path),
		zap.Int64("rows", r.rows))
	return r.source.Close()
}

// Schema returns the schema restored from metadata.
func (r *Reader) Schema() Schema { return r.schema }

// RowsRead returns the number of rows returned by Next so far.
func (r *Reader) RowsRead() int64 { return r.rows }

func (r *Reader) stateError(op string) error {
	return errors.Newf(errors.ErrorTypeState, "cannot %s reader in %s state", op, r.state).
		WithDetail("path", r.path)
}
