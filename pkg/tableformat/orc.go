package tableformat

import (
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/scritchley/orc"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// orcTypeName maps a physical kind to its ORC type. Both integer logical
// types share bigint storage.
func orcTypeName(k PhysicalKind) string {
	switch k {
	case KindBytes:
		return "string"
	case KindDouble:
		return "double"
	case KindInt64:
		return "bigint"
	default:
		return ""
	}
}

// orcCodec is the stripe compression of written ORC files. The ORC writer
// only encodes zlib; snappy is read-only in the library.
var orcCodec orc.CompressionCodec = orc.CompressionZlib{}

func orcSchema(cols []physicalColumn) (*orc.TypeDescription, error) {
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Name + ":" + orcTypeName(c.Kind)
	}
	schema, err := orc.ParseSchema("struct<" + strings.Join(fields, ",") + ">")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to build ORC schema")
	}
	return schema, nil
}

// orcSink writes batches to an ORC file row by row; stripe buffering and
// compression happen inside the ORC writer.
type orcSink struct {
	file   *os.File
	writer *orc.Writer
	row    []interface{}
}

func newORCSink(path string, cols []physicalColumn) (*orcSink, error) {
	schema, err := orcSchema(cols)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path) //nolint:gosec // G304: table path is chosen by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create table file").WithDetail("path", path)
	}

	w, err := orc.NewWriter(f,
		orc.SetSchema(schema),
		orc.SetCompression(orcCodec),
		orc.SetStripeTargetSize(defaultStripeSize),
	)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create ORC writer").WithDetail("path", path)
	}

	return &orcSink{
		file:   f,
		writer: w,
		row:    make([]interface{}, len(cols)),
	}, nil
}

func (s *orcSink) WriteBatch(b *Batch) error {
	for i := 0; i < b.Size; i++ {
		for c, v := range b.Columns {
			pos, ok := v.position(i)
			if !ok {
				s.row[c] = nil
				continue
			}
			switch v.Kind {
			case KindInt64:
				s.row[c] = v.Longs[pos]
			case KindDouble:
				s.row[c] = v.Doubles[pos]
			case KindBytes:
				s.row[c] = v.String(pos)
			}
		}
		if err := s.writer.Write(s.row...); err != nil {
			return errors.Wrap(err, errors.ErrorTypeIO, "failed to write ORC row")
		}
	}
	return nil
}

func (s *orcSink) Close() error {
	werr := s.writer.Close()
	ferr := closeFile(s.file)
	if werr != nil {
		return errors.Wrap(werr, errors.ErrorTypeIO, "failed to close ORC writer")
	}
	if ferr != nil {
		return errors.Wrap(ferr, errors.ErrorTypeIO, "failed to close table file")
	}
	return nil
}

// orcSource fills batches from the rows of an ORC cursor, stripe by stripe.
type orcSource struct {
	reader   *orc.Reader
	cursor   *orc.Cursor
	cols     []physicalColumn
	inStripe bool
	done     bool
}

func newORCSource(path string, cols []physicalColumn) (*orcSource, error) {
	r, err := orc.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open ORC file").WithDetail("path", path)
	}
	return &orcSource{
		reader: r,
		cursor: r.Select(physicalNames(cols)...),
		cols:   cols,
	}, nil
}

func (s *orcSource) Pull(b *Batch) (pullStatus, error) {
	b.Reset()
	if s.done {
		return pullEnd, nil
	}

	n := 0
	for n < b.Capacity {
		if !s.inStripe {
			if !s.cursor.Stripes() {
				s.done = true
				break
			}
			s.inStripe = true
		}
		if !s.cursor.Next() {
			s.inStripe = false
			continue
		}
		if err := s.fill(b, n, s.cursor.Row()); err != nil {
			return pullFailed, err
		}
		n++
	}

	if err := s.cursor.Err(); err != nil && !stderrors.Is(err, io.EOF) {
		return pullFailed, errors.Wrap(err, errors.ErrorTypeIO, "failed to read ORC stripe")
	}
	if n == 0 {
		return pullEnd, nil
	}
	b.seal(n)
	return pullMore, nil
}

func (s *orcSource) fill(b *Batch, i int, row []interface{}) error {
	if len(row) != len(s.cols) {
		return errors.Newf(errors.ErrorTypeIO, "ORC row has %d values, expected %d", len(row), len(s.cols))
	}
	for c, val := range row {
		v := b.Columns[c]
		if val == nil {
			v.SetNull(i)
			continue
		}
		ok := false
		switch v.Kind {
		case KindInt64:
			var x int64
			if x, ok = val.(int64); ok {
				v.SetLong(i, x)
			}
		case KindDouble:
			switch x := val.(type) {
			case orc.Double:
				v.SetDouble(i, float64(x))
				ok = true
			case float64:
				v.SetDouble(i, x)
				ok = true
			}
		case KindBytes:
			switch x := val.(type) {
			case string:
				v.SetString(i, x)
				ok = true
			case []byte:
				v.SetBytes(i, x)
				ok = true
			}
		}
		if !ok {
			return errors.Newf(errors.ErrorTypeIO, "unexpected ORC value %T in %s column %s", val, v.Kind, s.cols[c].Name)
		}
	}
	return nil
}

func (s *orcSource) Close() error {
	if err := s.reader.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to close ORC file")
	}
	return nil
}
