package tableformat

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

func arrowType(k PhysicalKind) arrow.DataType {
	switch k {
	case KindBytes:
		return arrow.BinaryTypes.String
	case KindDouble:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.PrimitiveTypes.Int64
	}
}

func arrowSchema(cols []physicalColumn) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Kind), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// parquetSink converts each batch into one Arrow record and hands it to the
// buffered Parquet writer, which cuts row groups on its own.
type parquetSink struct {
	file    *os.File
	writer  *pqarrow.FileWriter
	builder *array.RecordBuilder
}

func newParquetSink(path string, cols []physicalColumn) (*parquetSink, error) {
	schema := arrowSchema(cols)

	f, err := os.Create(path) //nolint:gosec // G304: table path is chosen by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create table file").WithDetail("path", path)
	}

	mem := memory.NewGoAllocator()
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithMaxRowGroupLength(defaultRowGroupLength),
		parquet.WithDataPageSize(defaultDataPageSize),
		parquet.WithAllocator(mem),
	)
	fw, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem)))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create Parquet writer").WithDetail("path", path)
	}

	return &parquetSink{
		file:    f,
		writer:  fw,
		builder: array.NewRecordBuilder(mem, schema),
	}, nil
}

func (s *parquetSink) WriteBatch(b *Batch) error {
	if b.Size == 0 {
		return nil
	}
	for c, v := range b.Columns {
		s.appendColumn(s.builder.Field(c), v, b.Size)
	}

	record := s.builder.NewRecord()
	defer record.Release()

	if err := s.writer.WriteBuffered(record); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write record batch")
	}
	return nil
}

func (s *parquetSink) appendColumn(builder array.Builder, v *ColumnVector, n int) {
	builder.Reserve(n)
	switch bld := builder.(type) {
	case *array.Int64Builder:
		for i := 0; i < n; i++ {
			if pos, ok := v.position(i); ok {
				bld.Append(v.Longs[pos])
			} else {
				bld.AppendNull()
			}
		}
	case *array.Float64Builder:
		for i := 0; i < n; i++ {
			if pos, ok := v.position(i); ok {
				bld.Append(v.Doubles[pos])
			} else {
				bld.AppendNull()
			}
		}
	case *array.StringBuilder:
		for i := 0; i < n; i++ {
			if pos, ok := v.position(i); ok {
				bld.Append(v.String(pos))
			} else {
				bld.AppendNull()
			}
		}
	}
}

func (s *parquetSink) Close() error {
	defer s.builder.Release()

	werr := s.writer.Close()
	ferr := closeFile(s.file)
	if werr != nil {
		return errors.Wrap(werr, errors.ErrorTypeIO, "failed to close Parquet writer")
	}
	if ferr != nil {
		return errors.Wrap(ferr, errors.ErrorTypeIO, "failed to close table file")
	}
	return nil
}

// parquetSource copies Arrow records from the Parquet record reader into
// batches. The reader is asked for records no larger than the batch.
type parquetSource struct {
	file   *file.Reader
	reader pqarrow.RecordReader
	cols   []physicalColumn

	record arrow.Record
	offset int
}

func newParquetSource(path string, cols []physicalColumn, capacity int) (*parquetSource, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open Parquet file").WithDetail("path", path)
	}

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: int64(capacity)}, memory.NewGoAllocator())
	if err != nil {
		_ = pf.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create Arrow reader").WithDetail("path", path)
	}

	indices, err := parquetColumnIndices(fr, cols)
	if err != nil {
		_ = pf.Close()
		return nil, err
	}

	rr, err := fr.GetRecordReader(context.Background(), indices, nil)
	if err != nil {
		_ = pf.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create record reader").WithDetail("path", path)
	}

	return &parquetSource{file: pf, reader: rr, cols: cols}, nil
}

// parquetColumnIndices resolves the leaf column of every physical column by
// name, so the stored column order does not have to match.
func parquetColumnIndices(fr *pqarrow.FileReader, cols []physicalColumn) ([]int, error) {
	schema, err := fr.Schema()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to read Arrow schema")
	}
	indices := make([]int, len(cols))
	for i, c := range cols {
		found := schema.FieldIndices(c.Name)
		if len(found) != 1 {
			return nil, errors.Newf(errors.ErrorTypeInvalidMetadata, "column %s not found in Parquet file", c.Name)
		}
		indices[i] = found[0]
	}
	return indices, nil
}

func (s *parquetSource) Pull(b *Batch) (pullStatus, error) {
	b.Reset()

	for s.record == nil || s.offset >= int(s.record.NumRows()) {
		s.releaseRecord()
		if !s.reader.Next() {
			// The record reader reports io.EOF at the normal end of data.
			if err := s.reader.Err(); err != nil && !stderrors.Is(err, io.EOF) {
				return pullFailed, errors.Wrap(err, errors.ErrorTypeIO, "failed to read record batch")
			}
			return pullEnd, nil
		}
		s.record = s.reader.Record()
		s.record.Retain()
		s.offset = 0
	}

	n := int(s.record.NumRows()) - s.offset
	if n > b.Capacity {
		n = b.Capacity
	}
	for c := range s.cols {
		if err := copyArrowColumn(b.Columns[c], s.record.Column(c), s.offset, n); err != nil {
			return pullFailed, err
		}
	}
	s.offset += n
	b.seal(n)
	return pullMore, nil
}

func copyArrowColumn(v *ColumnVector, col arrow.Array, offset, n int) error {
	switch arr := col.(type) {
	case *array.Int64:
		if v.Kind != KindInt64 {
			break
		}
		for i := 0; i < n; i++ {
			if arr.IsNull(offset + i) {
				v.SetNull(i)
			} else {
				v.SetLong(i, arr.Value(offset+i))
			}
		}
		return nil
	case *array.Float64:
		if v.Kind != KindDouble {
			break
		}
		for i := 0; i < n; i++ {
			if arr.IsNull(offset + i) {
				v.SetNull(i)
			} else {
				v.SetDouble(i, arr.Value(offset+i))
			}
		}
		return nil
	case *array.String:
		if v.Kind != KindBytes {
			break
		}
		for i := 0; i < n; i++ {
			if arr.IsNull(offset + i) {
				v.SetNull(i)
			} else {
				v.SetString(i, arr.Value(offset+i))
			}
		}
		return nil
	}
	return errors.Newf(errors.ErrorTypeIO, "unexpected Arrow column %s for %s vector", col.DataType(), v.Kind)
}

func (s *parquetSource) releaseRecord() {
	if s.record != nil {
		s.record.Release()
		s.record = nil
	}
}

func (s *parquetSource) Close() error {
	s.releaseRecord()
	s.reader.Release()
	if err := s.file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to close Parquet file")
	}
	return nil
}
