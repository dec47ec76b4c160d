package tableformat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/logger"
)

// fakeSource serves prepared fills, then either ends or fails.
type fakeSource struct {
	fills  []func(b *Batch)
	failAt int // index of the pull that fails, -1 for never
	pulls  int
	closed int
}

func newFakeSource(fills ...func(b *Batch)) *fakeSource {
	return &fakeSource{fills: fills, failAt: -1}
}

func (s *fakeSource) Pull(b *Batch) (pullStatus, error) {
	b.Reset()
	n := s.pulls
	s.pulls++
	if n == s.failAt {
		return pullFailed, errors.New(errors.ErrorTypeIO, "stripe checksum mismatch")
	}
	if n >= len(s.fills) {
		return pullEnd, nil
	}
	s.fills[n](b)
	return pullMore, nil
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

// longRows fills column 0 of an INT64 batch with values.
func longRows(values ...int64) func(b *Batch) {
	return func(b *Batch) {
		for i, x := range values {
			b.Columns[0].SetLong(i, x)
		}
		b.seal(len(values))
	}
}

func openFake(t *testing.T, schema Schema, rowKey bool, capacity int, src *fakeSource) *Reader {
	t.Helper()
	r, err := NewReader(ReaderConfig{Format: ORC, Capacity: capacity, RowKeyPresent: rowKey, Logger: logger.Nop()})
	require.NoError(t, err)
	require.NoError(t, r.start(src, schema))
	return r
}

func collectLongs(t *testing.T, r *Reader) []int64 {
	t.Helper()
	var out []int64
	for row, err := range r.Rows() {
		require.NoError(t, err)
		out = append(out, row.Cell(0).Long())
	}
	return out
}

func TestReaderIteratesBatches(t *testing.T) {
	src := newFakeSource(longRows(1, 2), longRows(3, 4), longRows(5))
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 2, src)

	assert.True(t, r.HasNext())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, collectLongs(t, r))
	assert.False(t, r.HasNext())
	assert.Equal(t, int64(5), r.RowsRead())

	_, err := r.Next()
	assert.ErrorIs(t, err, ErrEndOfTable)

	require.NoError(t, r.Close())
	assert.Equal(t, 1, src.closed)
}

func TestReaderHasNextHasNoSideEffects(t *testing.T) {
	src := newFakeSource(longRows(1))
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 4, src)

	pulls := src.pulls
	for i := 0; i < 3; i++ {
		assert.True(t, r.HasNext())
	}
	assert.Equal(t, pulls, src.pulls)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Cell(0).Long())
	assert.False(t, r.HasNext())
}

func TestReaderViewSurvivesLookahead(t *testing.T) {
	src := newFakeSource(longRows(10), longRows(20))
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 1, src)

	// Returning the last row of the first batch pulls the second one.
	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, src.pulls)
	assert.Equal(t, int64(10), row.Cell(0).Long())
}

func TestReaderEmptyTable(t *testing.T) {
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 4, newFakeSource())

	assert.False(t, r.HasNext())
	_, err := r.Next()
	assert.ErrorIs(t, err, ErrEndOfTable)
	assert.Empty(t, collectLongs(t, r))
}

func TestReaderRepeatingVector(t *testing.T) {
	schema := SchemaOf(Col("s", LogicalString), Col("x", LogicalDouble))
	src := newFakeSource(func(b *Batch) {
		b.Columns[0].SetString(0, "same")
		b.Columns[0].IsRepeating = true
		b.Columns[1].SetDouble(0, 1)
		b.Columns[1].SetDouble(2, 3)
		b.seal(3)
	})
	r := openFake(t, schema, false, 4, src)

	var got [][]Cell
	for row, err := range r.Rows() {
		require.NoError(t, err)
		got = append(got, CopyRow(row).Cells())
	}
	assert.Equal(t, [][]Cell{
		{StringCell("same"), DoubleCell(1)},
		{StringCell("same"), Missing()},
		{StringCell("same"), DoubleCell(3)},
	}, got)
}

func TestReaderIsNullWinsOverStoredValue(t *testing.T) {
	src := newFakeSource(func(b *Batch) {
		v := b.Columns[0]
		v.SetLong(0, 42)
		v.SetLong(1, 43)
		b.seal(2)
		v.IsNull[1] = true
		v.NoNulls = false
	})
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 4, src)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, LongCell(42), row.Cell(0))

	row, err = r.Next()
	require.NoError(t, err)
	assert.True(t, row.Cell(0).IsMissing())
}

func TestReaderNoNullsOverridesIsNull(t *testing.T) {
	src := newFakeSource(func(b *Batch) {
		v := b.Columns[0]
		v.Longs[0] = 7
		v.NoNulls = true
		b.Size = 1
	})
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 4, src)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, LongCell(7), row.Cell(0))
}

func TestReaderRowKey(t *testing.T) {
	schema := SchemaOf(Col("n", LogicalInt64))
	src := newFakeSource(func(b *Batch) {
		b.Columns[0].SetString(0, "k1")
		b.Columns[1].SetLong(0, 1)
		b.seal(1)
	})
	r := openFake(t, schema, true, 4, src)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "k1", row.Key())
	assert.Equal(t, 1, row.NumCells())
	assert.Equal(t, LongCell(1), row.Cell(0))

	noKey := openFake(t, schema, false, 4, newFakeSource(longRows(5)))
	row, err = noKey.Next()
	require.NoError(t, err)
	assert.Equal(t, NoKey, row.Key())
}

func TestReaderInt32Overflow(t *testing.T) {
	schema := SchemaOf(Col("n", LogicalInt32))
	src := newFakeSource(longRows(math.MaxInt32, math.MaxInt32+1, math.MinInt32))
	r := openFake(t, schema, false, 4, src)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, IntCell(math.MaxInt32), row.Cell(0))

	_, err = r.Next()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNumericOverflow))

	// The failing row is consumed; the next one is still readable.
	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, IntCell(math.MinInt32), row.Cell(0))
	assert.Equal(t, int32(math.MinInt32), row.Cell(0).Int())
}

func TestReaderPullFailureSurfacesAfterBatch(t *testing.T) {
	src := newFakeSource(longRows(1, 2))
	src.failAt = 1
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 2, src)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Cell(0).Long())

	row, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.Cell(0).Long())

	assert.True(t, r.HasNext())
	_, err = r.Next()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))

	_, err = r.Next()
	assert.ErrorIs(t, err, ErrEndOfTable)
}

func TestReaderRowsStopsOnIOError(t *testing.T) {
	src := newFakeSource(longRows(1))
	src.failAt = 1
	r := openFake(t, SchemaOf(Col("n", LogicalInt64)), false, 1, src)

	var errs []error
	n := 0
	for _, err := range r.Rows() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	assert.Equal(t, 1, n)
	require.Len(t, errs, 1)
	assert.True(t, errors.IsType(errs[0], errors.ErrorTypeIO))
}

func TestReaderFirstPullFailure(t *testing.T) {
	src := newFakeSource()
	src.failAt = 0

	r, err := NewReader(ReaderConfig{Logger: logger.Nop()})
	require.NoError(t, err)
	err = r.start(src, SchemaOf(Col("n", LogicalInt64)))
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestReaderStateMachine(t *testing.T) {
	r, err := NewReader(ReaderConfig{Logger: logger.Nop()})
	require.NoError(t, err)

	_, err = r.Next()
	assert.True(t, errors.IsType(err, errors.ErrorTypeState))
	assert.True(t, errors.IsType(r.Close(), errors.ErrorTypeState))
	assert.False(t, r.HasNext())

	require.NoError(t, r.start(newFakeSource(longRows(1)), SchemaOf(Col("n", LogicalInt64))))
	require.NoError(t, r.Close())

	assert.True(t, errors.IsType(r.Close(), errors.ErrorTypeState))
	_, err = r.Next()
	assert.True(t, errors.IsType(err, errors.ErrorTypeState))
	assert.True(t, errors.IsType(r.Open("x", Serialize(SchemaOf(Col("n", LogicalInt64)))), errors.ErrorTypeState))
}

func TestNewReaderRejectsFormat(t *testing.T) {
	_, err := NewReader(ReaderConfig{Format: "csv"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRowViewAll(t *testing.T) {
	schema := SchemaOf(Col("a", LogicalString), Col("b", LogicalInt64))
	src := newFakeSource(func(b *Batch) {
		b.Columns[0].SetString(0, "x")
		b.seal(1)
	})
	r := openFake(t, schema, false, 2, src)

	row, err := r.Next()
	require.NoError(t, err)

	var cells []Cell
	for i, c := range row.All() {
		assert.Equal(t, len(cells), i)
		cells = append(cells, c)
	}
	assert.Equal(t, []Cell{StringCell("x"), Missing()}, cells)
	assert.Equal(t, `no-key: ["x", ?]`, row.String())
}
