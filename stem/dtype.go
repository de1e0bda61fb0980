package stem

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

// DType is the element type of an Array, named as in numpy.
type DType int

const (
	InvalidDType DType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var dtypeInfo = [...]struct {
	name string
	size int
}{
	InvalidDType: {"invalid", 0},
	Int8:         {"int8", 1},
	Int16:        {"int16", 2},
	Int32:        {"int32", 4},
	Int64:        {"int64", 8},
	Uint8:        {"uint8", 1},
	Uint16:       {"uint16", 2},
	Uint32:       {"uint32", 4},
	Uint64:       {"uint64", 8},
	Float32:      {"float32", 4},
	Float64:      {"float64", 8},
}

func (d DType) valid() bool { return d > InvalidDType && d <= Float64 }

func (d DType) String() string {
	if d < 0 || int(d) >= len(dtypeInfo) {
		return fmt.Sprintf("dtype(%d)", int(d))
	}
	return dtypeInfo[d].name
}

// Size returns the element size in bytes.
func (d DType) Size() int {
	if !d.valid() {
		return 0
	}
	return dtypeInfo[d].size
}

// IsIntegral reports whether d is a signed or unsigned integer type.
func (d DType) IsIntegral() bool { return d >= Int8 && d <= Uint64 }

// IsSigned reports whether d can hold negative values.
func (d DType) IsSigned() bool { return (d >= Int8 && d <= Int64) || d.IsFloat() }

// IsFloat reports whether d is a floating-point type.
func (d DType) IsFloat() bool { return d == Float32 || d == Float64 }

// ParseDType parses a numpy dtype name such as "float32" or "uint16".
func ParseDType(s string) (DType, error) {
	for d := Int8; d <= Float64; d++ {
		if dtypeInfo[d].name == s {
			return d, nil
		}
	}
	return InvalidDType, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// dtypeOf returns the DType of a supported slice.
func dtypeOf(data any) (DType, error) {
	switch data.(type) {
	case []int8:
		return Int8, nil
	case []int16:
		return Int16, nil
	case []int32:
		return Int32, nil
	case []int64:
		return Int64, nil
	case []uint8:
		return Uint8, nil
	case []uint16:
		return Uint16, nil
	case []uint32:
		return Uint32, nil
	case []uint64:
		return Uint64, nil
	case []float32:
		return Float32, nil
	case []float64:
		return Float64, nil
	}
	return InvalidDType, fmt.Errorf("%w: %T", ErrUnsupportedType, data)
}

// fromKind maps an HDF5 element kind to a DType.
func fromKind(k hdf5.Kind) (DType, error) {
	switch k {
	case hdf5.Int8:
		return Int8, nil
	case hdf5.Int16:
		return Int16, nil
	case hdf5.Int32:
		return Int32, nil
	case hdf5.Int64:
		return Int64, nil
	case hdf5.Uint8:
		return Uint8, nil
	case hdf5.Uint16:
		return Uint16, nil
	case hdf5.Uint32:
		return Uint32, nil
	case hdf5.Uint64:
		return Uint64, nil
	case hdf5.Float32:
		return Float32, nil
	case hdf5.Float64:
		return Float64, nil
	}
	return InvalidDType, fmt.Errorf("%w: %s", ErrUnsupportedType, k)
}
