package tableio

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
)

// RowSink receives imported rows. A row is only valid during the call.
// *tableformat.Writer implements it.
type RowSink interface {
	WriteRow(row tableformat.Row) error
}

// CSVImporter converts the records of a CSV file with a header line into
// rows of a schema. Columns are matched to the schema by header name; an
// empty field is a missing cell.
type CSVImporter struct {
	schema tableformat.Schema
	key    string
	logger *zap.Logger
}

// NewCSVImporter returns an importer for schema. key names the CSV column
// holding row keys, or is empty to generate them.
func NewCSVImporter(schema tableformat.Schema, key string, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{schema: schema, key: key, logger: logger}
}

// Import reads every record from src and writes it to dst, returning the
// number of rows written. The first failing record aborts the import.
func (im *CSVImporter) Import(src io.Reader, dst RowSink) (int64, error) {
	reader := csv.NewReader(src)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return 0, errors.New(errors.ErrorTypeValidation, "CSV input has no header line")
		}
		return 0, errors.Wrap(err, errors.ErrorTypeIO, "failed to read CSV header")
	}
	fields, keyField, err := im.mapHeader(header)
	if err != nil {
		return 0, err
	}

	cells := make([]tableformat.Cell, len(im.schema.Columns))
	var n int64
	for {
		record, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, errors.Wrap(err, errors.ErrorTypeIO, "failed to read CSV record").WithDetail("row", n)
		}

		for c, col := range im.schema.Columns {
			cell, err := parseCell(col.Type, record[fields[c]])
			if err != nil {
				return n, errors.Wrap(err, errors.ErrorTypeValidation, "bad CSV field").
					WithDetail("row", n).
					WithDetail("column", col.Name)
			}
			cells[c] = cell
		}

		key := "Row" + strconv.FormatInt(n, 10)
		if keyField >= 0 {
			key = record[keyField]
		}
		if err := dst.WriteRow(tableformat.NewRow(key, cells...)); err != nil {
			return n, err
		}
		n++
	}

	im.logger.Debug("CSV import finished", zap.Int64("rows", n))
	return n, nil
}

// mapHeader resolves the CSV field of every schema column and of the key.
func (im *CSVImporter) mapHeader(header []string) ([]int, int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	fields := make([]int, len(im.schema.Columns))
	for c, col := range im.schema.Columns {
		i, ok := index[col.Name]
		if !ok {
			return nil, 0, errors.Newf(errors.ErrorTypeValidation, "CSV header has no column %q", col.Name)
		}
		fields[c] = i
	}

	keyField := -1
	if im.key != "" {
		i, ok := index[im.key]
		if !ok {
			return nil, 0, errors.Newf(errors.ErrorTypeValidation, "CSV header has no key column %q", im.key)
		}
		keyField = i
	}
	return fields, keyField, nil
}

// parseCell converts one CSV field. Strings are taken verbatim, so an empty
// string field is missing like any other empty field.
func parseCell(t tableformat.LogicalType, field string) (tableformat.Cell, error) {
	if field == "" {
		return tableformat.Missing(), nil
	}
	switch t {
	case tableformat.LogicalString:
		return tableformat.StringCell(field), nil
	case tableformat.LogicalDouble:
		x, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return tableformat.Missing(), err
		}
		return tableformat.DoubleCell(x), nil
	case tableformat.LogicalInt32:
		x, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return tableformat.Missing(), err
		}
		return tableformat.IntCell(int32(x)), nil
	case tableformat.LogicalInt64:
		x, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return tableformat.Missing(), err
		}
		return tableformat.LongCell(x), nil
	default:
		return tableformat.Missing(), errors.Newf(errors.ErrorTypeUnsupportedType, "cannot parse %s field", t)
	}
}
