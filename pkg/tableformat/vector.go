package tableformat

// DefaultBatchCapacity is the number of rows a batch holds unless the caller
// asks for another capacity.
const DefaultBatchCapacity = 1024

// ColumnVector holds one column of a batch. Exactly one of Longs, Doubles or
// the byte arena is in use, depending on Kind. IsNull is parallel to the
// values; NoNulls short-cuts it when set. An IsRepeating vector carries the
// value for every row at position 0.
type ColumnVector struct {
	Kind        PhysicalKind
	Longs       []int64
	Doubles     []float64
	IsNull      []bool
	NoNulls     bool
	IsRepeating bool

	// BYTES storage: row i is data[start[i] : start[i]+length[i]]
	data   []byte
	start  []int
	length []int
}

func newColumnVector(kind PhysicalKind, capacity int) *ColumnVector {
	v := &ColumnVector{
		Kind:   kind,
		IsNull: make([]bool, capacity),
	}
	switch kind {
	case KindInt64:
		v.Longs = make([]int64, capacity)
	case KindDouble:
		v.Doubles = make([]float64, capacity)
	case KindBytes:
		v.start = make([]int, capacity)
		v.length = make([]int, capacity)
		v.data = make([]byte, 0, capacity*16)
	}
	v.reset()
	return v
}

// reset marks every slot null and drops the byte arena contents, keeping
// its memory.
func (v *ColumnVector) reset() {
	for i := range v.IsNull {
		v.IsNull[i] = true
	}
	v.NoNulls = false
	v.IsRepeating = false
	v.data = v.data[:0]
}

// SetNull marks row i missing.
func (v *ColumnVector) SetNull(i int) {
	v.IsNull[i] = true
	v.NoNulls = false
}

// SetLong stores x at row i of an INT64 vector.
func (v *ColumnVector) SetLong(i int, x int64) {
	v.Longs[i] = x
	v.IsNull[i] = false
}

// SetDouble stores x at row i of a DOUBLE vector.
func (v *ColumnVector) SetDouble(i int, x float64) {
	v.Doubles[i] = x
	v.IsNull[i] = false
}

// SetString copies s into the arena and points row i at it.
func (v *ColumnVector) SetString(i int, s string) {
	v.start[i] = len(v.data)
	v.length[i] = len(s)
	v.data = append(v.data, s...)
	v.IsNull[i] = false
}

// SetBytes copies b into the arena and points row i at it.
func (v *ColumnVector) SetBytes(i int, b []byte) {
	v.start[i] = len(v.data)
	v.length[i] = len(b)
	v.data = append(v.data, b...)
	v.IsNull[i] = false
}

// Bytes returns the bytes of row i. The slice aliases the arena and is only
// valid until the vector is reset.
func (v *ColumnVector) Bytes(i int) []byte {
	s := v.start[i]
	return v.data[s : s+v.length[i]]
}

// String returns row i of a BYTES vector as a string.
func (v *ColumnVector) String(i int) string {
	return string(v.Bytes(i))
}

// position resolves the physical slot backing logical row i and whether a
// value is present there.
func (v *ColumnVector) position(i int) (int, bool) {
	if v.IsRepeating {
		i = 0
	}
	return i, v.NoNulls || !v.IsNull[i]
}

// Batch is a fixed-capacity, column-major buffer of rows, the unit of I/O.
type Batch struct {
	Capacity int
	Size     int
	Columns  []*ColumnVector
}

// NewBatch allocates one vector per kind, sized to capacity, all cells null.
func NewBatch(kinds []PhysicalKind, capacity int) *Batch {
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	b := &Batch{
		Capacity: capacity,
		Columns:  make([]*ColumnVector, len(kinds)),
	}
	for i, k := range kinds {
		b.Columns[i] = newColumnVector(k, capacity)
	}
	return b
}

// NewSchemaBatch allocates a batch for the physical layout of schema, with
// the row key column first when withKey is set.
func NewSchemaBatch(schema Schema, withKey bool, capacity int) *Batch {
	return NewBatch(physicalKinds(physicalLayout(schema, withKey)), capacity)
}

// Reset empties the batch for the next fill.
func (b *Batch) Reset() {
	b.Size = 0
	for _, v := range b.Columns {
		v.reset()
	}
}

// Full reports whether no more rows fit.
func (b *Batch) Full() bool {
	return b.Size >= b.Capacity
}

// NumColumns returns the number of physical columns.
func (b *Batch) NumColumns() int {
	return len(b.Columns)
}

// seal finishes a fill of n rows by a container source, deriving NoNulls.
func (b *Batch) seal(n int) {
	b.Size = n
	for _, v := range b.Columns {
		v.NoNulls = true
		for i := 0; i < n; i++ {
			if v.IsNull[i] {
				v.NoNulls = false
				break
			}
		}
	}
}
