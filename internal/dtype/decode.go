package dtype

import (
	"bytes"
	stdbinary "encoding/binary"
	"fmt"
	"math"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// VarLenFunc returns the bytes of a variable-length element stored in the
// global heap collection at addr under index.
type VarLenFunc func(addr uint64, index uint32) ([]byte, error)

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func byteOrder(t *message.Datatype) stdbinary.ByteOrder {
	if t.BigEndian {
		return stdbinary.BigEndian
	}
	return stdbinary.LittleEndian
}

func readUint(order stdbinary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	}
	return order.Uint64(b)
}

func decodeInts[T integer](raw []byte, n, size int, order stdbinary.ByteOrder) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(readUint(order, raw[i*size:(i+1)*size]))
	}
	return out
}

// Decode converts n elements of raw data with type t into a typed slice.
// resolve is only consulted for variable-length strings and may be nil
// otherwise.
func Decode(t *message.Datatype, raw []byte, n int, sizes binary.Sizes, resolve VarLenFunc) (any, error) {
	kind, err := Of(t)
	if err != nil {
		return nil, err
	}
	size := int(t.Size)
	if len(raw) < n*size {
		return nil, fmt.Errorf("dtype: %d bytes for %d elements of %d bytes", len(raw), n, size)
	}
	order := byteOrder(t)
	if t.Class == message.ClassEnum && t.Base != nil && t.Base.BigEndian {
		order = stdbinary.BigEndian
	}

	switch kind {
	case Int8:
		return decodeInts[int8](raw, n, size, order), nil
	case Int16:
		return decodeInts[int16](raw, n, size, order), nil
	case Int32:
		return decodeInts[int32](raw, n, size, order), nil
	case Int64:
		return decodeInts[int64](raw, n, size, order), nil
	case Uint8:
		return decodeInts[uint8](raw, n, size, order), nil
	case Uint16:
		return decodeInts[uint16](raw, n, size, order), nil
	case Uint32:
		return decodeInts[uint32](raw, n, size, order), nil
	case Uint64:
		return decodeInts[uint64](raw, n, size, order), nil
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
		}
		return out, nil
	case Float64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
		return out, nil
	case Bool:
		out := make([]bool, n)
		for i := range out {
			out[i] = raw[i] != 0
		}
		return out, nil
	case String:
		if t.Class == message.ClassVarLen {
			return decodeVarLenStrings(raw, n, size, sizes, resolve)
		}
		out := make([]string, n)
		for i := range out {
			out[i] = trimFixed(raw[i*size:(i+1)*size], t.Padding)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

func trimFixed(b []byte, pad uint8) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if pad == message.PadSpacePad {
		b = bytes.TrimRight(b, " ")
	}
	return string(b)
}

func decodeVarLenStrings(raw []byte, n, size int, sizes binary.Sizes, resolve VarLenFunc) ([]string, error) {
	out := make([]string, n)
	for i := range out {
		d := binary.NewDecoder(raw[i*size:(i+1)*size], sizes)
		length := d.U32()
		addr := d.Offset()
		index := d.U32()
		if err := d.Err(); err != nil {
			return nil, err
		}
		if length == 0 || addr == binary.Undefined || addr == 0 {
			continue
		}
		if resolve == nil {
			return nil, fmt.Errorf("%w: variable-length string without heap access", ErrUnsupported)
		}
		b, err := resolve(addr, index)
		if err != nil {
			return nil, fmt.Errorf("dtype: string %d: %w", i, err)
		}
		if int(length) < len(b) {
			b = b[:length]
		}
		out[i] = string(bytes.TrimRight(b, "\x00"))
	}
	return out, nil
}
