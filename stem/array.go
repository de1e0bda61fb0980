package stem

import (
	"fmt"
)

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Array is an n-dimensional row-major array backed by a single typed slice.
// A 4D-STEM datacube is an Array of rank 4.
type Array struct {
	data  any
	shape Shape
	dtype DType
}

// NewArray wraps data, a []int8 ... []float64 slice, with the given shape.
// The slice is not copied. With no shape the array is one-dimensional.
func NewArray(data any, shape ...int) (*Array, error) {
	dt, err := dtypeOf(data)
	if err != nil {
		return nil, err
	}
	n := sliceLen(data)
	if len(shape) == 0 {
		shape = []int{n}
	}
	s := Shape(shape).Clone()
	if err := s.Validate(); err != nil {
		return nil, &ShapeError{Shape: s, Err: fmt.Errorf("%w: %v", ErrShapeMismatch, err)}
	}
	if s.NumElements() != n {
		return nil, &ShapeError{Shape: s, Err: fmt.Errorf("%w: %d elements", ErrShapeMismatch, n)}
	}
	return &Array{data: data, shape: s, dtype: dt}, nil
}

// Zeros returns a zero-filled array.
func Zeros(dt DType, shape ...int) (*Array, error) {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		return nil, &ShapeError{Shape: s.Clone(), Err: fmt.Errorf("%w: %v", ErrShapeMismatch, err)}
	}
	data := makeSlice(dt, s.NumElements())
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
	}
	return NewArray(data, shape...)
}

// Shape returns a copy of the dimensions.
func (a *Array) Shape() Shape { return a.shape.Clone() }

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Len returns the number of elements.
func (a *Array) Len() int { return sliceLen(a.data) }

// NBytes returns the size of the element data in bytes.
func (a *Array) NBytes() int { return a.Len() * a.dtype.Size() }

// Data returns the backing slice, e.g. []float32. It is shared, not copied.
func (a *Array) Data() any { return a.data }

// ScanShape returns the first two dimensions of a 4-D array.
func (a *Array) ScanShape() Shape { return subShape(a.shape, 0) }

// DetectorShape returns the last two dimensions of a 4-D array.
func (a *Array) DetectorShape() Shape { return subShape(a.shape, 2) }

func subShape(s Shape, from int) Shape {
	if len(s) < from+2 {
		return nil
	}
	return s[from : from+2].Clone()
}

// At returns the element at idx as a float64.
func (a *Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("index %v for %dD array", idx, len(a.shape))
	}
	off := 0
	for i, st := range a.shape.Strides() {
		if idx[i] < 0 || idx[i] >= a.shape[i] {
			return 0, fmt.Errorf("index %v out of range for shape %v", idx, a.shape)
		}
		off += idx[i] * st
	}
	return elementAt(a.data, off), nil
}

// Float64s returns the elements converted to float64.
func (a *Array) Float64s() []float64 {
	return appendFloat64s(make([]float64, 0, a.Len()), a.data)
}

// Frame returns the diffraction pattern at scan position (x, y) as a 2-D
// copy.
func (a *Array) Frame(x, y int) (*Array, error) {
	if a.Rank() != 4 {
		return nil, &ShapeError{Shape: a.Shape(), Err: ErrRank}
	}
	det := a.DetectorShape()
	f, err := a.Slice([]int{x, y, 0, 0}, []int{1, 1, det[0], det[1]})
	if err != nil {
		return nil, err
	}
	f.shape = det
	return f, nil
}

// Slice returns a copy of the box [start, start+count).
func (a *Array) Slice(start, count []int) (*Array, error) {
	if err := checkBox(a.shape, start, count); err != nil {
		return nil, err
	}
	return &Array{data: boxOf(a.data, a.shape, start, count), shape: Shape(count).Clone(), dtype: a.dtype}, nil
}

func (a *Array) String() string {
	return fmt.Sprintf("array(%s, shape=%v)", a.dtype, a.shape)
}

// Load returns a itself, so an Array satisfies Cube.
func (a *Array) Load() (*Array, error) { return a, nil }

func checkBox(shape Shape, start, count []int) error {
	if len(start) != len(shape) || len(count) != len(shape) {
		return fmt.Errorf("slice of rank %d/%d on %dD array", len(start), len(count), len(shape))
	}
	for i := range shape {
		if start[i] < 0 || count[i] < 0 || start[i]+count[i] > shape[i] {
			return fmt.Errorf("slice start %v count %v out of range for shape %v", start, count, shape)
		}
	}
	return nil
}

// box copies [start, start+count) out of a row-major src of shape.
func box[T any](src []T, shape Shape, start, count []int) []T {
	n := Shape(count).NumElements()
	out := make([]T, 0, n)
	if n == 0 {
		return out
	}
	rank := len(shape)
	if rank == 0 {
		return append(out, src[0])
	}
	strides := shape.Strides()
	idx := make([]int, rank)
	row := count[rank-1]
	for {
		off := 0
		for i := range idx {
			off += (start[i] + idx[i]) * strides[i]
		}
		out = append(out, src[off:off+row]...)
		i := rank - 2
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < count[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

func boxOf(data any, shape Shape, start, count []int) any {
	switch s := data.(type) {
	case []int8:
		return box(s, shape, start, count)
	case []int16:
		return box(s, shape, start, count)
	case []int32:
		return box(s, shape, start, count)
	case []int64:
		return box(s, shape, start, count)
	case []uint8:
		return box(s, shape, start, count)
	case []uint16:
		return box(s, shape, start, count)
	case []uint32:
		return box(s, shape, start, count)
	case []uint64:
		return box(s, shape, start, count)
	case []float32:
		return box(s, shape, start, count)
	case []float64:
		return box(s, shape, start, count)
	}
	panic(fmt.Sprintf("stem: unsupported slice %T", data))
}

func toFloat64s[T number](dst []float64, s []T) []float64 {
	for _, v := range s {
		dst = append(dst, float64(v))
	}
	return dst
}

// appendFloat64s appends the elements of a supported slice to dst.
func appendFloat64s(dst []float64, data any) []float64 {
	switch s := data.(type) {
	case []int8:
		return toFloat64s(dst, s)
	case []int16:
		return toFloat64s(dst, s)
	case []int32:
		return toFloat64s(dst, s)
	case []int64:
		return toFloat64s(dst, s)
	case []uint8:
		return toFloat64s(dst, s)
	case []uint16:
		return toFloat64s(dst, s)
	case []uint32:
		return toFloat64s(dst, s)
	case []uint64:
		return toFloat64s(dst, s)
	case []float32:
		return toFloat64s(dst, s)
	case []float64:
		return append(dst, s...)
	}
	return dst
}

func elementAt(data any, i int) float64 {
	switch s := data.(type) {
	case []int8:
		return float64(s[i])
	case []int16:
		return float64(s[i])
	case []int32:
		return float64(s[i])
	case []int64:
		return float64(s[i])
	case []uint8:
		return float64(s[i])
	case []uint16:
		return float64(s[i])
	case []uint32:
		return float64(s[i])
	case []uint64:
		return float64(s[i])
	case []float32:
		return float64(s[i])
	case []float64:
		return s[i]
	}
	return 0
}

func sliceLen(data any) int {
	switch s := data.(type) {
	case []int8:
		return len(s)
	case []int16:
		return len(s)
	case []int32:
		return len(s)
	case []int64:
		return len(s)
	case []uint8:
		return len(s)
	case []uint16:
		return len(s)
	case []uint32:
		return len(s)
	case []uint64:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	}
	return 0
}

func makeSlice(dt DType, n int) any {
	switch dt {
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Uint8:
		return make([]uint8, n)
	case Uint16:
		return make([]uint16, n)
	case Uint32:
		return make([]uint32, n)
	case Uint64:
		return make([]uint64, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	}
	return nil
}
