package tableio

import (
	"bufio"
	"io"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
)

// dumpLine is one NDJSON line. Cells keep column order; a missing cell is
// null.
type dumpLine struct {
	Key   string        `json:"key"`
	Cells []interface{} `json:"cells"`
}

// DumpHeader is the first NDJSON line, naming the columns of the cells
// arrays that follow.
type DumpHeader struct {
	Columns []string `json:"columns"`
	Types   []string `json:"types"`
}

// ExportNDJSON writes a header line and then one line per row of src to
// dst, returning the number of rows written. Any read error, including a
// numeric overflow, aborts the export.
func ExportNDJSON(dst io.Writer, src *tableformat.Reader, logger *zap.Logger) (int64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bw := bufio.NewWriter(dst)
	enc := gojson.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	schema := src.Schema()
	header := DumpHeader{Columns: schema.Names(), Types: make([]string, len(schema.Columns))}
	for i, c := range schema.Columns {
		header.Types[i] = c.Type.Tag()
	}
	if err := enc.Encode(header); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeIO, "failed to write dump header")
	}

	line := dumpLine{Cells: make([]interface{}, len(schema.Columns))}
	var n int64
	for row, err := range src.Rows() {
		if err != nil {
			return n, err
		}
		line.Key = row.Key()
		for i, cell := range row.All() {
			line.Cells[i] = cell.Value()
		}
		if err := enc.Encode(&line); err != nil {
			return n, errors.Wrap(err, errors.ErrorTypeIO, "failed to write dump line").WithDetail("row", n)
		}
		n++
	}

	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeIO, "failed to flush dump")
	}
	logger.Debug("NDJSON export finished", zap.Int64("rows", n))
	return n, nil
}
