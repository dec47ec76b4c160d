package tableio

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
	"github.com/ajitpratap0/tablestore/pkg/testutil"
)

const citySchema = `
key: code
columns:
  - name: city
    type: string
  - name: population
    type: long
  - name: rank
    type: int
  - name: area
    type: double
`

const cityCSV = `code,city,population,rank,area
OSL,Oslo,709000,1,454.0
BGO,Bergen,,2,465.3
TRD,,212000,,
`

// memSink keeps copies of the rows it receives.
type memSink struct {
	rows []*tableformat.DataRow
}

func (s *memSink) WriteRow(row tableformat.Row) error {
	s.rows = append(s.rows, tableformat.CopyRow(row))
	return nil
}

func parseCitySchema(t *testing.T) (*SchemaFile, tableformat.Schema) {
	t.Helper()
	sf, err := ParseSchemaFile([]byte(citySchema))
	require.NoError(t, err)
	schema, err := sf.Schema()
	require.NoError(t, err)
	return sf, schema
}

func TestParseSchemaFile(t *testing.T) {
	sf, schema := parseCitySchema(t)

	assert.Equal(t, "code", sf.Key)
	assert.Equal(t, []string{"city", "population", "rank", "area"}, schema.Names())
	assert.Equal(t, tableformat.LogicalInt32, schema.Columns[2].Type)

	_, err := ParseSchemaFile([]byte("key: x\n"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = ParseSchemaFile([]byte("columns: {"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	sf, err = ParseSchemaFile([]byte("columns:\n  - name: when\n    type: datetime\n"))
	require.NoError(t, err)
	_, err = sf.Schema()
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))
}

func TestCSVImport(t *testing.T) {
	sf, schema := parseCitySchema(t)
	sink := &memSink{}

	n, err := NewCSVImporter(schema, sf.Key, testutil.TestLogger(t)).Import(strings.NewReader(cityCSV), sink)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	want := []*tableformat.DataRow{
		tableformat.NewRow("OSL", tableformat.StringCell("Oslo"), tableformat.LongCell(709000), tableformat.IntCell(1), tableformat.DoubleCell(454)),
		tableformat.NewRow("BGO", tableformat.StringCell("Bergen"), tableformat.Missing(), tableformat.IntCell(2), tableformat.DoubleCell(465.3)),
		tableformat.NewRow("TRD", tableformat.Missing(), tableformat.LongCell(212000), tableformat.Missing(), tableformat.Missing()),
	}
	assert.Equal(t, want, sink.rows)
}

func TestCSVImportGeneratesKeys(t *testing.T) {
	_, schema := parseCitySchema(t)
	sink := &memSink{}

	_, err := NewCSVImporter(schema, "", nil).Import(strings.NewReader(cityCSV), sink)
	require.NoError(t, err)
	require.Len(t, sink.rows, 3)
	assert.Equal(t, "Row0", sink.rows[0].Key())
	assert.Equal(t, "Row2", sink.rows[2].Key())
}

func TestCSVImportErrors(t *testing.T) {
	_, schema := parseCitySchema(t)

	tests := []struct {
		name string
		key  string
		csv  string
	}{
		{"empty input", "", ""},
		{"missing column", "", "city,population,rank\nOslo,1,1\n"},
		{"missing key column", "id", "city,population,rank,area\nOslo,1,1,1\n"},
		{"bad long", "", "city,population,rank,area\nOslo,many,1,1\n"},
		{"int out of range", "", "city,population,rank,area\nOslo,1,3000000000,1\n"},
		{"bad double", "", "city,population,rank,area\nOslo,1,1,wide\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVImporter(schema, tt.key, nil).Import(strings.NewReader(tt.csv), &memSink{})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "got %v", err)
		})
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	sf, schema := parseCitySchema(t)

	for _, format := range []tableformat.Format{tableformat.ORC, tableformat.Parquet} {
		t.Run(string(format), func(t *testing.T) {
			path := testutil.TempPath(t, "cities")
			w, err := tableformat.Create(path, schema, tableformat.WriterConfig{Format: format, WriteRowKey: true, Logger: testutil.TestLogger(t)})
			require.NoError(t, err)
			_, err = NewCSVImporter(schema, sf.Key, nil).Import(strings.NewReader(cityCSV), w)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			meta := tableformat.NewSettings()
			require.NoError(t, w.WriteMetadata(meta))
			require.NoError(t, meta.Save(tableformat.SidecarPath(path)))

			r, err := tableformat.OpenTable(path)
			require.NoError(t, err)
			defer r.Close()

			var out bytes.Buffer
			n, err := ExportNDJSON(&out, r, testutil.TestLogger(t))
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)

			lines := readLines(t, &out)
			require.Len(t, lines, 4)
			assert.JSONEq(t, `{"columns":["city","population","rank","area"],"types":["string","long","int","double"]}`, lines[0])
			assert.JSONEq(t, `{"key":"OSL","cells":["Oslo",709000,1,454]}`, lines[1])
			assert.JSONEq(t, `{"key":"BGO","cells":["Bergen",null,2,465.3]}`, lines[2])
			assert.JSONEq(t, `{"key":"TRD","cells":[null,212000,null,null]}`, lines[3])

			var header DumpHeader
			require.NoError(t, gojson.Unmarshal([]byte(lines[0]), &header))
			assert.Equal(t, schema.Names(), header.Columns)
		})
	}
}

func readLines(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var lines []string
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}
