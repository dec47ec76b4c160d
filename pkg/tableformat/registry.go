package tableformat

import (
	"strconv"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// Keys of the table-level side-car tree written by Writer.WriteMetadata.
const (
	metaColumnsKey = "columns"
	metaFormatKey  = "format"
	metaRowKeyKey  = "rowKey"
)

// Serialize records the logical type of every column, one entry per column
// keyed by column name, in ordinal order.
func Serialize(schema Schema) *Settings {
	s := NewSettings()
	SerializeInto(s, schema)
	return s
}

// SerializeInto writes the column entries of schema into dst.
func SerializeInto(dst *Settings, schema Schema) {
	for _, c := range schema.Columns {
		dst.AddString(c.Name, c.Type.Tag())
	}
}

// Deserialize rebuilds a schema from a tree written by Serialize. Entry
// order gives the ordinals.
func Deserialize(s *Settings) (Schema, error) {
	if s == nil {
		return Schema{}, errors.New(errors.ErrorTypeInvalidMetadata, "no column metadata")
	}
	cols := make([]ColumnDescriptor, 0, s.Len())
	for i, name := range s.Keys() {
		tag, err := s.GetString(name)
		if err != nil {
			return Schema{}, err
		}
		lt, err := ParseTag(tag)
		if err != nil {
			return Schema{}, errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "cannot restore schema").
				WithDetail("column", name)
		}
		cols = append(cols, ColumnDescriptor{Name: name, Type: lt, Ordinal: i})
	}
	schema := Schema{Columns: cols}
	if err := schema.Validate(); err != nil {
		return Schema{}, errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "stored schema is invalid")
	}
	return schema, nil
}

// TableInfo is everything the side-car tree records about a table file.
type TableInfo struct {
	Schema Schema
	Format Format
	RowKey bool
}

// ReadTableInfo decodes a tree written by Writer.WriteMetadata. Trees that
// only carry a "columns" entry default to ORC without row keys.
func ReadTableInfo(meta *Settings) (TableInfo, error) {
	if meta == nil {
		return TableInfo{}, errors.New(errors.ErrorTypeInvalidMetadata, "no table metadata")
	}
	cols, err := meta.GetSettings(metaColumnsKey)
	if err != nil {
		return TableInfo{}, err
	}
	schema, err := Deserialize(cols)
	if err != nil {
		return TableInfo{}, err
	}
	format, err := ParseFormat(meta.GetStringOr(metaFormatKey, string(ORC)))
	if err != nil {
		return TableInfo{}, errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "unknown table format")
	}
	rowKey, err := strconv.ParseBool(meta.GetStringOr(metaRowKeyKey, "false"))
	if err != nil {
		return TableInfo{}, errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "bad row key flag")
	}
	return TableInfo{Schema: schema, Format: format, RowKey: rowKey}, nil
}

func writeTableInfo(dst *Settings, info TableInfo) {
	SerializeInto(dst.AddSettings(metaColumnsKey), info.Schema)
	dst.AddString(metaFormatKey, string(info.Format))
	dst.AddString(metaRowKeyKey, strconv.FormatBool(info.RowKey))
}
