package dtype

import (
	"errors"
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// ErrUnsupported is returned for datatypes with no Go slice mapping.
var ErrUnsupported = errors.New("dtype: unsupported datatype")

// Kind names the Go element type of a decoded value.
type Kind uint8

const (
	Invalid Kind = iota
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
	Bool
	String
)

var kindInfo = [...]struct {
	name string
	size int
}{
	Invalid: {"invalid", 0},
	Int8:    {"int8", 1},
	Int16:   {"int16", 2},
	Int32:   {"int32", 4},
	Int64:   {"int64", 8},
	Uint8:   {"uint8", 1},
	Uint16:  {"uint16", 2},
	Uint32:  {"uint32", 4},
	Uint64:  {"uint64", 8},
	Float32: {"float32", 4},
	Float64: {"float64", 8},
	Bool:    {"bool", 1},
	String:  {"str", 0},
}

// String returns the numpy name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Size is the in-file element size of numeric kinds, zero for strings.
func (k Kind) Size() int {
	if int(k) < len(kindInfo) {
		return kindInfo[k].size
	}
	return 0
}

// Numeric reports whether k is an integer or float kind.
func (k Kind) Numeric() bool { return k >= Int8 && k <= Float64 }

// Integer reports whether k is an integer kind.
func (k Kind) Integer() bool { return k >= Int8 && k <= Uint64 }

// Signed reports whether k is a signed integer or float kind.
func (k Kind) Signed() bool { return (k >= Int8 && k <= Int64) || k == Float32 || k == Float64 }

// Datatype returns the little-endian datatype the writer uses for k. Strings
// are variable-length UTF-8.
func (k Kind) Datatype(sizes binary.Sizes) (*message.Datatype, error) {
	switch {
	case k.Integer():
		return message.Int(k.Size(), k.Signed()), nil
	case k == Float32 || k == Float64:
		return message.Float(k.Size()), nil
	case k == Bool:
		return message.Bool(), nil
	case k == String:
		return message.VarLenString(sizes), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, k)
}

// Of returns the kind a datatype decodes to.
func Of(t *message.Datatype) (Kind, error) {
	switch t.Class {
	case message.ClassFixed:
		return intKind(int(t.Size), t.Signed)
	case message.ClassFloat:
		switch t.Size {
		case 4:
			return Float32, nil
		case 8:
			return Float64, nil
		}
	case message.ClassEnum:
		if t.IsBool() {
			return Bool, nil
		}
		if t.Base != nil {
			return intKind(int(t.Base.Size), t.Base.Signed)
		}
	case message.ClassString:
		return String, nil
	case message.ClassVarLen:
		if t.VarLenString {
			return String, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %s of %d bytes", ErrUnsupported, t.Class, t.Size)
}

func intKind(size int, signed bool) (Kind, error) {
	var k Kind
	switch size {
	case 1:
		k = Int8
	case 2:
		k = Int16
	case 4:
		k = Int32
	case 8:
		k = Int64
	default:
		return Invalid, fmt.Errorf("%w: %d-byte integer", ErrUnsupported, size)
	}
	if !signed {
		k += Uint8 - Int8
	}
	return k, nil
}

// KindOf returns the kind of a slice produced by Decode or accepted by Encode.
func KindOf(v any) (Kind, error) {
	switch v.(type) {
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
	case []bool:
		return Bool, nil
	case []string:
		return String, nil
	}
	return Invalid, fmt.Errorf("%w: Go type %T", ErrUnsupported, v)
}
