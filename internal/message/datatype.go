package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Class is a datatype class.
type Class uint8

const (
	ClassFixed     Class = 0
	ClassFloat     Class = 1
	ClassTime      Class = 2
	ClassString    Class = 3
	ClassBitfield  Class = 4
	ClassOpaque    Class = 5
	ClassCompound  Class = 6
	ClassReference Class = 7
	ClassEnum      Class = 8
	ClassVarLen    Class = 9
	ClassArray     Class = 10
)

var classNames = [...]string{
	"integer", "float", "time", "string", "bitfield", "opaque",
	"compound", "reference", "enum", "vlen", "array",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Character sets of string datatypes.
const (
	CharsetASCII uint8 = 0
	CharsetUTF8  uint8 = 1
)

// String padding kinds.
const (
	PadNullTerm uint8 = 0
	PadNullPad  uint8 = 1
	PadSpacePad uint8 = 2
)

// EnumMember is one name/value pair of an enumeration. Value holds Base.Size
// bytes in the base type's byte order.
type EnumMember struct {
	Name  string
	Value []byte
}

// Datatype is a decoded datatype message. Only the fields relevant to the
// class are set.
type Datatype struct {
	Class   Class
	Version uint8
	Size    uint32

	// Fixed-point, float, bitfield and enum bases.
	BigEndian bool
	Signed    bool

	// Fixed strings and variable-length strings.
	Padding uint8
	Charset uint8

	// Variable-length types; VarLenString distinguishes strings from
	// sequences of Base.
	VarLenString bool

	// Base type of enums, variable-length types and arrays.
	Base *Datatype

	Members []EnumMember
	Dims    []uint32
}

// Int returns a little-endian fixed-point type.
func Int(size int, signed bool) *Datatype {
	return &Datatype{Class: ClassFixed, Version: 1, Size: uint32(size), Signed: signed}
}

// Float returns a little-endian IEEE 754 type of 4 or 8 bytes.
func Float(size int) *Datatype {
	return &Datatype{Class: ClassFloat, Version: 1, Size: uint32(size)}
}

// FixedString returns a null-terminated fixed-length string type.
func FixedString(size int, charset uint8) *Datatype {
	return &Datatype{Class: ClassString, Version: 1, Size: uint32(size), Charset: charset}
}

// VarLenString returns the variable-length UTF-8 string type h5py uses for
// Python str values.
func VarLenString(sizes binary.Sizes) *Datatype {
	return &Datatype{
		Class:        ClassVarLen,
		Version:      1,
		Size:         uint32(4 + sizes.Offset + 4),
		VarLenString: true,
		Charset:      CharsetUTF8,
		Base:         Int(1, false),
	}
}

// Bool returns the enum type h5py uses for numpy bool: int8 with FALSE=0 and
// TRUE=1.
func Bool() *Datatype {
	return &Datatype{
		Class:   ClassEnum,
		Version: 1,
		Size:    1,
		Base:    Int(1, true),
		Members: []EnumMember{{Name: "FALSE", Value: []byte{0}}, {Name: "TRUE", Value: []byte{1}}},
	}
}

// IsBool reports whether t is the h5py bool enum.
func (t *Datatype) IsBool() bool {
	if t.Class != ClassEnum || t.Size != 1 || len(t.Members) != 2 {
		return false
	}
	return t.Members[0].Name == "FALSE" && t.Members[1].Name == "TRUE" &&
		t.Members[0].Value[0] == 0 && t.Members[1].Value[0] == 1
}

// ParseDatatype decodes a datatype and returns the number of bytes it
// occupies, which callers need for nested base types.
func ParseDatatype(data []byte) (*Datatype, int, error) {
	d := binary.NewDecoder(data, binary.DefaultSizes)
	b0 := d.U8()
	bits := uint32(d.U8()) | uint32(d.U8())<<8 | uint32(d.U8())<<16
	t := &Datatype{Class: Class(b0 & 0x0f), Version: b0 >> 4, Size: d.U32()}
	if err := d.Err(); err != nil {
		return nil, 0, fmt.Errorf("datatype: %w", err)
	}
	if t.Version < 1 || t.Version > 4 {
		return nil, 0, versionError("datatype", t.Version)
	}

	switch t.Class {
	case ClassFixed, ClassBitfield:
		t.BigEndian = bits&0x01 != 0
		t.Signed = bits&0x08 != 0
		d.Skip(4) // bit offset, precision
	case ClassFloat:
		if bits&0x40 != 0 {
			return nil, 0, fmt.Errorf("%w: VAX float order", ErrUnsupported)
		}
		t.BigEndian = bits&0x01 != 0
		t.Signed = true
		d.Skip(12)
	case ClassTime:
		t.BigEndian = bits&0x01 != 0
		d.Skip(2)
	case ClassString:
		t.Padding = uint8(bits & 0x0f)
		t.Charset = uint8(bits>>4) & 0x0f
	case ClassOpaque:
		d.Skip(int(bits & 0xff))
	case ClassReference:
	case ClassEnum:
		base, n, err := ParseDatatype(data[d.Pos():])
		if err != nil {
			return nil, 0, fmt.Errorf("enum base: %w", err)
		}
		t.Base = base
		d.Skip(n)
		count := int(bits & 0xffff)
		t.Members = make([]EnumMember, count)
		for i := range t.Members {
			start := d.Pos()
			t.Members[i].Name = d.CString()
			if t.Version < 3 {
				// Names are padded to a multiple of eight including the NUL.
				d.Skip(pad8(d.Pos()-start) - (d.Pos() - start))
			}
		}
		for i := range t.Members {
			t.Members[i].Value = d.Bytes(int(base.Size))
		}
	case ClassVarLen:
		t.VarLenString = bits&0x0f == 1
		t.Padding = uint8(bits>>4) & 0x0f
		t.Charset = uint8(bits>>8) & 0x0f
		base, n, err := ParseDatatype(data[d.Pos():])
		if err != nil {
			return nil, 0, fmt.Errorf("vlen base: %w", err)
		}
		t.Base = base
		d.Skip(n)
	case ClassArray:
		rank := int(d.U8())
		if t.Version < 3 {
			d.Skip(3)
		}
		t.Dims = make([]uint32, rank)
		for i := range t.Dims {
			t.Dims[i] = d.U32()
		}
		if t.Version < 3 {
			d.Skip(4 * rank) // permutation indices
		}
		if d.Err() == nil {
			base, n, err := ParseDatatype(data[d.Pos():])
			if err != nil {
				return nil, 0, fmt.Errorf("array base: %w", err)
			}
			t.Base = base
			d.Skip(n)
		}
	case ClassCompound:
		// Members are not decoded; the attribute and dataset layers report
		// compound values as unsupported.
		return t, len(data), nil
	default:
		return nil, 0, fmt.Errorf("datatype: invalid class %d", t.Class)
	}

	if err := d.Err(); err != nil {
		return nil, 0, fmt.Errorf("datatype %s: %w", t.Class, err)
	}
	return t, d.Pos(), nil
}

// Encode returns the version 1 encoding of fixed-point, float, string,
// variable-length string and enum types.
func (t *Datatype) Encode(sizes binary.Sizes) ([]byte, error) {
	e := binary.NewEncoder(sizes)
	var bits uint32
	switch t.Class {
	case ClassFixed:
		if t.Signed {
			bits |= 0x08
		}
	case ClassFloat:
		// Implied mantissa MSB, sign bit at the top.
		bits = 0x20 | uint32(8*t.Size-1)<<8
	case ClassString:
		bits = uint32(t.Padding) | uint32(t.Charset)<<4
	case ClassVarLen:
		if !t.VarLenString {
			return nil, fmt.Errorf("%w: encoding vlen sequences", ErrUnsupported)
		}
		bits = 1 | uint32(t.Padding)<<4 | uint32(t.Charset)<<8
	case ClassEnum:
		bits = uint32(len(t.Members))
	default:
		return nil, fmt.Errorf("%w: encoding %s datatypes", ErrUnsupported, t.Class)
	}
	if t.BigEndian {
		bits |= 0x01
	}

	e.U8(uint8(t.Class) | 1<<4)
	e.U8(uint8(bits))
	e.U8(uint8(bits >> 8))
	e.U8(uint8(bits >> 16))
	e.U32(t.Size)

	switch t.Class {
	case ClassFixed:
		e.U16(0)
		e.U16(uint16(8 * t.Size))
	case ClassFloat:
		switch t.Size {
		case 4:
			e.U16(0)
			e.U16(32)
			e.U8(23)
			e.U8(8)
			e.U8(0)
			e.U8(23)
			e.U32(127)
		case 8:
			e.U16(0)
			e.U16(64)
			e.U8(52)
			e.U8(11)
			e.U8(0)
			e.U8(52)
			e.U32(1023)
		default:
			return nil, fmt.Errorf("%w: %d-byte float", ErrUnsupported, t.Size)
		}
	case ClassVarLen, ClassEnum:
		base, err := t.Base.Encode(sizes)
		if err != nil {
			return nil, err
		}
		e.Raw(base)
		for _, m := range t.Members {
			start := e.Len()
			e.Raw([]byte(m.Name))
			e.U8(0)
			e.Zero(pad8(e.Len()-start) - (e.Len() - start))
		}
		for _, m := range t.Members {
			e.Raw(m.Value)
		}
	}
	return e.Bytes(), nil
}

func pad8(n int) int { return (n + 7) &^ 7 }
