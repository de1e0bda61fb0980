package dtype

import (
	"fmt"
	"math"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Len returns the number of elements in a slice accepted by Encode.
func Len(v any) int {
	switch s := v.(type) {
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
	case []bool:
		return len(s)
	case []string:
		return len(s)
	}
	return 0
}

// Normalize turns a Go value into a slice Encode accepts. Scalars become
// one-element slices and report scalar=true. int and uint widen to 64 bits.
func Normalize(v any) (slice any, scalar bool, err error) {
	switch x := v.(type) {
	case int:
		return []int64{int64(x)}, true, nil
	case int8:
		return []int8{x}, true, nil
	case int16:
		return []int16{x}, true, nil
	case int32:
		return []int32{x}, true, nil
	case int64:
		return []int64{x}, true, nil
	case uint:
		return []uint64{uint64(x)}, true, nil
	case uint8:
		return []uint8{x}, true, nil
	case uint16:
		return []uint16{x}, true, nil
	case uint32:
		return []uint32{x}, true, nil
	case uint64:
		return []uint64{x}, true, nil
	case float32:
		return []float32{x}, true, nil
	case float64:
		return []float64{x}, true, nil
	case bool:
		return []bool{x}, true, nil
	case string:
		return []string{x}, true, nil
	case []int:
		out := make([]int64, len(x))
		for i, e := range x {
			out[i] = int64(e)
		}
		return out, false, nil
	case []uint:
		out := make([]uint64, len(x))
		for i, e := range x {
			out[i] = uint64(e)
		}
		return out, false, nil
	}
	if _, err := KindOf(v); err != nil {
		return nil, false, err
	}
	return v, false, nil
}

func appendInts[T integer](dst []byte, s []T, size int) []byte {
	for _, v := range s {
		u := uint64(v)
		for i := 0; i < size; i++ {
			dst = append(dst, byte(u>>(8*i)))
		}
	}
	return dst
}

// Encode returns the little-endian bytes of a numeric or bool slice. Strings
// are not handled here; the writer stores them through the global heap.
func Encode(v any) ([]byte, Kind, error) {
	k, err := KindOf(v)
	if err != nil {
		return nil, Invalid, err
	}
	buf := make([]byte, 0, Len(v)*k.Size())
	switch s := v.(type) {
	case []int8:
		buf = appendInts(buf, s, 1)
	case []int16:
		buf = appendInts(buf, s, 2)
	case []int32:
		buf = appendInts(buf, s, 4)
	case []int64:
		buf = appendInts(buf, s, 8)
	case []uint8:
		buf = append(buf, s...)
	case []uint16:
		buf = appendInts(buf, s, 2)
	case []uint32:
		buf = appendInts(buf, s, 4)
	case []uint64:
		buf = appendInts(buf, s, 8)
	case []float32:
		for _, f := range s {
			buf = binary.Order.AppendUint32(buf, math.Float32bits(f))
		}
	case []float64:
		for _, f := range s {
			buf = binary.Order.AppendUint64(buf, math.Float64bits(f))
		}
	case []bool:
		for _, b := range s {
			if b {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
	default:
		return nil, Invalid, fmt.Errorf("%w: cannot encode %s inline", ErrUnsupported, k)
	}
	return buf, k, nil
}

// AppendVarLen appends one variable-length element reference: the byte
// length, the global heap collection address and the object index.
func AppendVarLen(dst []byte, sizes binary.Sizes, length uint32, addr uint64, index uint32) []byte {
	e := binary.NewEncoder(sizes)
	e.U32(length)
	e.Offset(addr)
	e.U32(index)
	return append(dst, e.Bytes()...)
}
