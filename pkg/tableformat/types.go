package tableformat

import (
	"fmt"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// CellType names the cell type a column declares in the surrounding table
// framework. Only a handful of them can be stored.
type CellType string

const (
	CellTypeString   CellType = "string"
	CellTypeDouble   CellType = "double"
	CellTypeInt      CellType = "int"
	CellTypeLong     CellType = "long"
	CellTypeBoolean  CellType = "boolean"
	CellTypeDateTime CellType = "datetime"
	CellTypeBlob     CellType = "blob"
	CellTypeList     CellType = "list"
)

// LogicalType is the storable type of a column as seen by callers.
type LogicalType uint8

const (
	LogicalString LogicalType = iota + 1
	LogicalDouble
	LogicalInt32
	LogicalInt64
)

// PhysicalKind is the primitive encoding of a column vector.
type PhysicalKind uint8

const (
	KindBytes PhysicalKind = iota + 1
	KindDouble
	KindInt64
)

// Side-car tags, one per logical type.
const (
	tagString = "string"
	tagDouble = "double"
	tagInt    = "int"
	tagLong   = "long"
)

// Classify maps a framework cell type to its logical type.
func Classify(t CellType) (LogicalType, error) {
	switch t {
	case CellTypeString:
		return LogicalString, nil
	case CellTypeDouble:
		return LogicalDouble, nil
	case CellTypeInt:
		return LogicalInt32, nil
	case CellTypeLong:
		return LogicalInt64, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeUnsupportedType, "cell type %q cannot be stored", string(t)).
			WithDetail("cell_type", string(t))
	}
}

// PhysicalKind returns the vector encoding used for the logical type.
// INT32 is widened to 64-bit storage.
func (t LogicalType) PhysicalKind() PhysicalKind {
	switch t {
	case LogicalString:
		return KindBytes
	case LogicalDouble:
		return KindDouble
	case LogicalInt32, LogicalInt64:
		return KindInt64
	default:
		panic(fmt.Sprintf("tableformat: invalid logical type %d", t))
	}
}

// Tag returns the side-car metadata tag of the logical type.
func (t LogicalType) Tag() string {
	switch t {
	case LogicalString:
		return tagString
	case LogicalDouble:
		return tagDouble
	case LogicalInt32:
		return tagInt
	case LogicalInt64:
		return tagLong
	default:
		return ""
	}
}

// Valid reports whether t is one of the four logical types.
func (t LogicalType) Valid() bool {
	return t >= LogicalString && t <= LogicalInt64
}

func (t LogicalType) String() string {
	switch t {
	case LogicalString:
		return "STRING"
	case LogicalDouble:
		return "DOUBLE"
	case LogicalInt32:
		return "INT32"
	case LogicalInt64:
		return "INT64"
	default:
		return fmt.Sprintf("LogicalType(%d)", uint8(t))
	}
}

// ParseTag is the inverse of Tag.
func ParseTag(tag string) (LogicalType, error) {
	switch tag {
	case tagString:
		return LogicalString, nil
	case tagDouble:
		return LogicalDouble, nil
	case tagInt:
		return LogicalInt32, nil
	case tagLong:
		return LogicalInt64, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidMetadata, "unknown column type tag %q", tag).
			WithDetail("tag", tag)
	}
}

func (k PhysicalKind) String() string {
	switch k {
	case KindBytes:
		return "BYTES"
	case KindDouble:
		return "DOUBLE"
	case KindInt64:
		return "INT64"
	default:
		return fmt.Sprintf("PhysicalKind(%d)", uint8(k))
	}
}
