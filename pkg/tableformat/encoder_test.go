package tableformat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

func TestNewBatchAllNull(t *testing.T) {
	b := NewSchemaBatch(allTypesSchema(), true, 8)

	assert.Equal(t, 8, b.Capacity)
	assert.Equal(t, 0, b.Size)
	require.Equal(t, 5, b.NumColumns())
	assert.Equal(t, []PhysicalKind{KindBytes, KindBytes, KindDouble, KindInt64, KindInt64},
		[]PhysicalKind{b.Columns[0].Kind, b.Columns[1].Kind, b.Columns[2].Kind, b.Columns[3].Kind, b.Columns[4].Kind})

	for _, v := range b.Columns {
		for i := 0; i < b.Capacity; i++ {
			_, ok := v.position(i)
			assert.False(t, ok)
		}
	}
}

func TestNewBatchDefaultCapacity(t *testing.T) {
	b := NewBatch([]PhysicalKind{KindInt64}, 0)
	assert.Equal(t, DefaultBatchCapacity, b.Capacity)
	assert.Len(t, b.Columns[0].Longs, DefaultBatchCapacity)
}

func TestColumnVectorArena(t *testing.T) {
	v := newColumnVector(KindBytes, 4)
	v.SetString(0, "alpha")
	v.SetBytes(1, []byte("beta"))
	v.SetString(2, "")
	v.SetNull(3)

	assert.Equal(t, "alpha", v.String(0))
	assert.Equal(t, []byte("beta"), v.Bytes(1))
	assert.Equal(t, "", v.String(2))
	_, ok := v.position(2)
	assert.True(t, ok, "empty string is present")
	_, ok = v.position(3)
	assert.False(t, ok)

	// The arena keeps its memory across resets.
	before := cap(v.data)
	v.reset()
	assert.Len(t, v.data, 0)
	assert.Equal(t, before, cap(v.data))
	_, ok = v.position(0)
	assert.False(t, ok)
}

func TestRepeatingPosition(t *testing.T) {
	v := newColumnVector(KindDouble, 4)
	v.SetDouble(0, 2.5)
	v.IsRepeating = true

	for i := 0; i < 4; i++ {
		pos, ok := v.position(i)
		assert.True(t, ok)
		assert.Equal(t, 0, pos)
	}
}

func TestRowEncoderWriteRow(t *testing.T) {
	schema := allTypesSchema()
	enc := NewRowEncoder(schema, true)
	b := NewSchemaBatch(schema, true, 4)

	require.NoError(t, enc.WriteRow(b, 0, NewRow("r0", StringCell("a"), DoubleCell(1.5), IntCell(math.MinInt32), LongCell(math.MaxInt64))))
	require.NoError(t, enc.WriteRow(b, 1, NewRow("r1", Missing(), Missing(), Missing(), Missing())))
	b.Size = 2

	assert.Equal(t, "r0", b.Columns[0].String(0))
	assert.Equal(t, "r1", b.Columns[0].String(1))

	want0 := []Cell{StringCell("a"), DoubleCell(1.5), IntCell(math.MinInt32), LongCell(math.MaxInt64)}
	for c, col := range schema.Columns {
		assert.Equal(t, want0[c], decodeCell(col.Type, b.Columns[c+1], 0), col.Name)
		assert.True(t, decodeCell(col.Type, b.Columns[c+1], 1).IsMissing(), col.Name)
	}
}

func TestRowEncoderWidensInt32IntoLong(t *testing.T) {
	schema := SchemaOf(Col("total", LogicalInt64))
	b := NewSchemaBatch(schema, false, 1)

	require.NoError(t, NewRowEncoder(schema, false).WriteRow(b, 0, NewRow("k", IntCell(-7))))
	assert.Equal(t, LongCell(-7), decodeCell(LogicalInt64, b.Columns[0], 0))
}

func TestRowEncoderRejects(t *testing.T) {
	schema := SchemaOf(Col("n", LogicalInt32), Col("s", LogicalString))
	enc := NewRowEncoder(schema, false)
	b := NewSchemaBatch(schema, false, 2)

	err := enc.WriteRow(b, 0, NewRow("short", IntCell(1)))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	err = enc.WriteRow(b, 0, NewRow("bad", LongCell(1), StringCell("x")))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.True(t, decodeCell(LogicalInt32, b.Columns[0], 0).IsMissing())

	err = enc.WriteRow(b, 2, NewRow("late", IntCell(1), StringCell("x")))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestNarrowInt32(t *testing.T) {
	for _, x := range []int64{0, -1, math.MaxInt32, math.MinInt32} {
		n, err := narrowInt32(x, "c")
		require.NoError(t, err)
		assert.Equal(t, x, int64(n))
	}
	for _, x := range []int64{math.MaxInt32 + 1, math.MinInt32 - 1, math.MaxInt64} {
		_, err := narrowInt32(x, "c")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNumericOverflow))
	}
}

func TestBatchSeal(t *testing.T) {
	b := NewBatch([]PhysicalKind{KindInt64, KindInt64}, 4)
	b.Columns[0].SetLong(0, 1)
	b.Columns[0].SetLong(1, 2)
	b.Columns[1].SetLong(0, 1)
	b.seal(2)

	assert.Equal(t, 2, b.Size)
	assert.True(t, b.Columns[0].NoNulls)
	assert.False(t, b.Columns[1].NoNulls)
	assert.False(t, b.Full())

	b.Reset()
	assert.Equal(t, 0, b.Size)
	assert.False(t, b.Columns[0].NoNulls)
}

func TestCopyRow(t *testing.T) {
	r := NewRow("k", StringCell("x"), Missing(), LongCell(3))
	c := CopyRow(r)

	assert.Equal(t, r, c)
	assert.Equal(t, `k: ["x", ?, 3]`, c.String())
}
