// Package tableio moves rows between table files and text formats: CSV
// files are imported into tables, tables are exported as NDJSON.
package tableio

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
)

// SchemaFile is the YAML description of an imported table.
//
//	key: id
//	columns:
//	  - name: id
//	    type: string
//	  - name: score
//	    type: double
type SchemaFile struct {
	// Key names the CSV column holding row keys. When empty, keys are
	// generated as Row0, Row1, ...
	Key     string                   `yaml:"key"`
	Columns []tableformat.ColumnSpec `yaml:"columns"`
}

// LoadSchemaFile reads and decodes a schema file.
func LoadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: schema path is chosen by the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to read schema file").WithDetail("path", path)
	}
	return ParseSchemaFile(data)
}

// ParseSchemaFile decodes a schema file from YAML.
func ParseSchemaFile(data []byte) (*SchemaFile, error) {
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to parse schema file")
	}
	if len(sf.Columns) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "schema file declares no columns")
	}
	return &sf, nil
}

// Schema classifies the declared columns.
func (sf *SchemaFile) Schema() (tableformat.Schema, error) {
	return tableformat.NewSchema(sf.Columns)
}
