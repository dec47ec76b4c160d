package tableformat

import (
	"iter"
)

// RowView is a row of the reader's current batch. Cells are decoded from
// the column vectors when asked for. A view is owned by its Reader and is
// only valid until the next call to Reader.Next; use CopyRow to keep one.
type RowView struct {
	types  []LogicalType
	offset int
	hasKey bool

	batch *Batch
	row   int
}

// Key returns the stored row key, or NoKey when the file has none.
func (v *RowView) Key() string {
	if !v.hasKey {
		return NoKey
	}
	col := v.batch.Columns[0]
	pos, ok := col.position(v.row)
	if !ok {
		return NoKey
	}
	return col.String(pos)
}

// NumCells returns the number of data cells; the key is not counted.
func (v *RowView) NumCells() int { return len(v.types) }

// Cell decodes cell i. It panics if i is out of range.
func (v *RowView) Cell(i int) Cell {
	return decodeCell(v.types[i], v.batch.Columns[i+v.offset], v.row)
}

// All iterates the cells of the row in column order.
func (v *RowView) All() iter.Seq2[int, Cell] {
	return func(yield func(int, Cell) bool) {
		for i := range v.types {
			if !yield(i, v.Cell(i)) {
				return
			}
		}
	}
}

func (v *RowView) String() string { return formatRow(v) }
