package tableformat

import (
	"strconv"
	"strings"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// rowKeyColumnName is the physical name of the synthetic key column. It
// cannot clash with data columns, whose physical names start with a digit.
const rowKeyColumnName = "rowkey"

// ColumnSpec is a column as declared by the surrounding table framework.
type ColumnSpec struct {
	Name string   `yaml:"name" json:"name"`
	Type CellType `yaml:"type" json:"type"`
}

// ColumnDescriptor is a stored column.
type ColumnDescriptor struct {
	Name    string
	Type    LogicalType
	Ordinal int
}

// Schema is the ordered list of stored columns. Column i has ordinal i.
type Schema struct {
	Columns []ColumnDescriptor
}

// NewSchema classifies every column spec and builds a schema in spec order.
func NewSchema(specs []ColumnSpec) (Schema, error) {
	cols := make([]ColumnDescriptor, 0, len(specs))
	for i, spec := range specs {
		lt, err := Classify(spec.Type)
		if err != nil {
			return Schema{}, errors.Wrap(err, errors.ErrorTypeUnsupportedType, "cannot build schema").
				WithDetail("column", spec.Name).
				WithDetail("ordinal", i)
		}
		cols = append(cols, ColumnDescriptor{Name: spec.Name, Type: lt, Ordinal: i})
	}

	s := Schema{Columns: cols}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// SchemaOf builds a schema from name/type pairs, assigning ordinals in order.
func SchemaOf(cols ...ColumnDescriptor) Schema {
	out := make([]ColumnDescriptor, len(cols))
	for i, c := range cols {
		c.Ordinal = i
		out[i] = c
	}
	return Schema{Columns: out}
}

// Col is shorthand for a ColumnDescriptor without ordinal, for SchemaOf.
func Col(name string, t LogicalType) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Type: t}
}

// Validate checks names are unique and non-empty, ordinals match positions
// and every type is valid.
func (s Schema) Validate() error {
	seen := make(map[string]int, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" {
			return errors.New(errors.ErrorTypeValidation, "column name must not be empty").
				WithDetail("ordinal", i)
		}
		if prev, ok := seen[c.Name]; ok {
			return errors.Newf(errors.ErrorTypeValidation, "duplicate column name %q", c.Name).
				WithDetail("first", prev).
				WithDetail("second", i)
		}
		seen[c.Name] = i
		if c.Ordinal != i {
			return errors.Newf(errors.ErrorTypeValidation, "column %q has ordinal %d at position %d", c.Name, c.Ordinal, i)
		}
		if !c.Type.Valid() {
			return errors.Newf(errors.ErrorTypeUnsupportedType, "column %q has invalid type %s", c.Name, c.Type)
		}
	}
	return nil
}

// NumColumns returns the number of logical columns.
func (s Schema) NumColumns() int {
	return len(s.Columns)
}

// Names returns the column names in ordinal order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Equal reports whether both schemas have the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.Columns) != len(o.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != o.Columns[i] {
			return false
		}
	}
	return true
}

// PhysicalName derives the container column name for a logical column: the
// ordinal followed by the name with every character outside [A-Za-z]
// replaced by '_'. The ordinal prefix keeps names unique after sanitizing.
func PhysicalName(ordinal int, name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	b.WriteString(strconv.Itoa(ordinal))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

type physicalColumn struct {
	Name string
	Kind PhysicalKind
}

// physicalLayout returns the container columns for s, with the row key
// column first when withKey is set.
func physicalLayout(s Schema, withKey bool) []physicalColumn {
	cols := make([]physicalColumn, 0, len(s.Columns)+1)
	if withKey {
		cols = append(cols, physicalColumn{Name: rowKeyColumnName, Kind: KindBytes})
	}
	for _, c := range s.Columns {
		cols = append(cols, physicalColumn{Name: PhysicalName(c.Ordinal, c.Name), Kind: c.Type.PhysicalKind()})
	}
	return cols
}

func physicalKinds(cols []physicalColumn) []PhysicalKind {
	kinds := make([]PhysicalKind, len(cols))
	for i, c := range cols {
		kinds[i] = c.Kind
	}
	return kinds
}

func physicalNames(cols []physicalColumn) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
