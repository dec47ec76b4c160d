package tableformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		cell CellType
		want LogicalType
		kind PhysicalKind
	}{
		{CellTypeString, LogicalString, KindBytes},
		{CellTypeDouble, LogicalDouble, KindDouble},
		{CellTypeInt, LogicalInt32, KindInt64},
		{CellTypeLong, LogicalInt64, KindInt64},
	}

	for _, tt := range tests {
		t.Run(string(tt.cell), func(t *testing.T) {
			got, err := Classify(tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kind, got.PhysicalKind())
		})
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, ct := range []CellType{CellTypeBoolean, CellTypeDateTime, CellTypeBlob, CellTypeList, "geometry"} {
		_, err := Classify(ct)
		require.Error(t, err, ct)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType), ct)
	}
}

func TestTagRoundTrip(t *testing.T) {
	for _, lt := range []LogicalType{LogicalString, LogicalDouble, LogicalInt32, LogicalInt64} {
		got, err := ParseTag(lt.Tag())
		require.NoError(t, err)
		assert.Equal(t, lt, got)
	}

	assert.Equal(t, "int", LogicalInt32.Tag())
	assert.Equal(t, "long", LogicalInt64.Tag())

	_, err := ParseTag("decimal")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidMetadata))
}

func TestPhysicalName(t *testing.T) {
	tests := []struct {
		ordinal int
		name    string
		want    string
	}{
		{0, "id", "0id"},
		{1, "score", "1score"},
		{2, "first name", "2first_name"},
		{3, "a-b.c", "3a_b_c"},
		{12, "x1", "12x_"},
		{4, "größe", "4gr__e"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhysicalName(tt.ordinal, tt.name))
	}

	// Names that collide after sanitizing stay distinct through the ordinal.
	assert.NotEqual(t, PhysicalName(0, "a b"), PhysicalName(1, "a-b"))
}

func TestNewSchema(t *testing.T) {
	s, err := NewSchema([]ColumnSpec{
		{Name: "id", Type: CellTypeString},
		{Name: "n", Type: CellTypeInt},
	})
	require.NoError(t, err)
	assert.Equal(t, SchemaOf(Col("id", LogicalString), Col("n", LogicalInt32)), s)
	assert.Equal(t, []string{"id", "n"}, s.Names())

	_, err = NewSchema([]ColumnSpec{{Name: "flag", Type: CellTypeBoolean}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))

	_, err = NewSchema([]ColumnSpec{{Name: "a", Type: CellTypeInt}, {Name: "a", Type: CellTypeLong}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = NewSchema([]ColumnSpec{{Name: "", Type: CellTypeInt}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestPhysicalLayout(t *testing.T) {
	s := SchemaOf(Col("id", LogicalString), Col("n", LogicalInt32), Col("x", LogicalDouble))

	withKey := physicalLayout(s, true)
	assert.Equal(t, []string{"rowkey", "0id", "1n", "2x"}, physicalNames(withKey))
	assert.Equal(t, []PhysicalKind{KindBytes, KindBytes, KindInt64, KindDouble}, physicalKinds(withKey))

	noKey := physicalLayout(s, false)
	assert.Equal(t, []string{"0id", "1n", "2x"}, physicalNames(noKey))
}
