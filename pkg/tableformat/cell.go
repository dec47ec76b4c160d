package tableformat

import (
	"fmt"
	"strconv"
)

// NoKey is the key reported for every row of a table stored without keys.
const NoKey = "no-key"

// Cell is one possibly-missing typed value. The zero Cell is missing.
type Cell struct {
	typ LogicalType
	str string
	f64 float64
	i64 int64
}

// Missing returns a missing cell.
func Missing() Cell { return Cell{} }

// StringCell returns a present STRING cell.
func StringCell(v string) Cell { return Cell{typ: LogicalString, str: v} }

// DoubleCell returns a present DOUBLE cell.
func DoubleCell(v float64) Cell { return Cell{typ: LogicalDouble, f64: v} }

// IntCell returns a present INT32 cell.
func IntCell(v int32) Cell { return Cell{typ: LogicalInt32, i64: int64(v)} }

// LongCell returns a present INT64 cell.
func LongCell(v int64) Cell { return Cell{typ: LogicalInt64, i64: v} }

// IsMissing reports whether the cell carries no value.
func (c Cell) IsMissing() bool { return c.typ == 0 }

// Type returns the logical type of a present cell, 0 if missing.
func (c Cell) Type() LogicalType { return c.typ }

// Str returns the value of a STRING cell.
func (c Cell) Str() string { return c.str }

// Double returns the value of a DOUBLE cell.
func (c Cell) Double() float64 { return c.f64 }

// Int returns the value of an INT32 cell.
func (c Cell) Int() int32 { return int32(c.i64) }

// Long returns the value of an INT64 or INT32 cell.
func (c Cell) Long() int64 { return c.i64 }

// Value returns the cell as a plain Go value, nil when missing.
func (c Cell) Value() interface{} {
	switch c.typ {
	case LogicalString:
		return c.str
	case LogicalDouble:
		return c.f64
	case LogicalInt32:
		return int32(c.i64)
	case LogicalInt64:
		return c.i64
	default:
		return nil
	}
}

func (c Cell) String() string {
	switch c.typ {
	case LogicalString:
		return strconv.Quote(c.str)
	case LogicalDouble:
		return strconv.FormatFloat(c.f64, 'g', -1, 64)
	case LogicalInt32, LogicalInt64:
		return strconv.FormatInt(c.i64, 10)
	default:
		return "?"
	}
}

// Row is the cell-based row contract shared with the table framework.
type Row interface {
	Key() string
	NumCells() int
	Cell(i int) Cell
}

// DataRow is a materialized Row.
type DataRow struct {
	key   string
	cells []Cell
}

// NewRow returns a row with the given key and cells.
func NewRow(key string, cells ...Cell) *DataRow {
	return &DataRow{key: key, cells: cells}
}

func (r *DataRow) Key() string { return r.key }
func (r *DataRow) NumCells() int { return len(r.cells) }
func (r *DataRow) Cell(i int) Cell { return r.cells[i] }
func (r *DataRow) Cells() []Cell { return r.cells }
func (r *DataRow) String() string { return formatRow(r) }

// CopyRow materializes any Row, e.g. a RowView that must outlive the next
// Reader.Next call.
func CopyRow(r Row) *DataRow {
	cells := make([]Cell, r.NumCells())
	for i := range cells {
		cells[i] = r.Cell(i)
	}
	return &DataRow{key: r.Key(), cells: cells}
}

func formatRow(r Row) string {
	s := r.Key() + ": ["
	for i := 0; i < r.NumCells(); i++ {
		if i > 0 {
			s += ", "
		}
		s += r.Cell(i).String()
	}
	return s + "]"
}

// typeMismatch describes a present cell stored into a column of another type.
func typeMismatch(col ColumnDescriptor, c Cell) string {
	return fmt.Sprintf("column %q expects %s, got %s", col.Name, col.Type, c.Type())
}
