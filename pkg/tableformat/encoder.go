package tableformat

import (
	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// RowEncoder converts rows into batch slots for one schema.
type RowEncoder struct {
	schema  Schema
	withKey bool
	offset  int
}

// NewRowEncoder returns an encoder for schema. With withKey set the row key
// is written to physical column 0 and data columns are shifted by one.
func NewRowEncoder(schema Schema, withKey bool) *RowEncoder {
	e := &RowEncoder{schema: schema, withKey: withKey}
	if withKey {
		e.offset = 1
	}
	return e
}

// WriteRow stores row at slot i of batch. Missing cells become nulls. A
// present cell of the wrong type fails the row; its slot is left null.
// WriteRow does not change batch.Size.
func (e *RowEncoder) WriteRow(batch *Batch, i int, row Row) error {
	if n := row.NumCells(); n != len(e.schema.Columns) {
		return errors.Newf(errors.ErrorTypeValidation, "row %q has %d cells, schema has %d columns", row.Key(), n, len(e.schema.Columns))
	}
	if i < 0 || i >= batch.Capacity {
		return errors.Newf(errors.ErrorTypeValidation, "slot %d outside batch capacity %d", i, batch.Capacity)
	}

	if e.withKey {
		batch.Columns[0].SetString(i, row.Key())
	}

	for c, col := range e.schema.Columns {
		v := batch.Columns[c+e.offset]
		cell := row.Cell(c)
		if cell.IsMissing() {
			v.SetNull(i)
			continue
		}
		if !assignable(col.Type, cell.Type()) {
			v.SetNull(i)
			return errors.New(errors.ErrorTypeValidation, typeMismatch(col, cell)).
				WithDetail("row", row.Key())
		}

		switch v.Kind {
		case KindInt64:
			v.SetLong(i, cell.Long())
		case KindDouble:
			v.SetDouble(i, cell.Double())
		case KindBytes:
			v.SetString(i, cell.Str())
		}
	}
	return nil
}

// assignable reports whether a cell of type from may be stored in a column
// of type to. INT32 cells widen into INT64 columns.
func assignable(to, from LogicalType) bool {
	return to == from || (to == LogicalInt64 && from == LogicalInt32)
}

// narrowInt32 re-narrows widened storage, failing when bits would be lost.
func narrowInt32(x int64, column string) (int32, error) {
	n := int32(x)
	if int64(n) != x {
		return 0, errors.Newf(errors.ErrorTypeNumericOverflow, "stored value %d does not fit 32-bit int column %q", x, column).
			WithDetail("value", x)
	}
	return n, nil
}

// decodeCell reads logical row i of v as type t.
func decodeCell(t LogicalType, v *ColumnVector, i int) Cell {
	pos, ok := v.position(i)
	if !ok {
		return Missing()
	}
	switch t {
	case LogicalString:
		return StringCell(v.String(pos))
	case LogicalDouble:
		return DoubleCell(v.Doubles[pos])
	case LogicalInt32:
		return IntCell(int32(v.Longs[pos]))
	case LogicalInt64:
		return LongCell(v.Longs[pos])
	default:
		return Missing()
	}
}
