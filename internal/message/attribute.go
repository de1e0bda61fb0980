package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Attribute is a decoded attribute message. Data holds the raw element bytes
// in the datatype's byte order.
type Attribute struct {
	Name      string
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

// ParseAttribute decodes an attribute message of version 1, 2 or 3.
func ParseAttribute(data []byte, sizes binary.Sizes) (*Attribute, error) {
	d := binary.NewDecoder(data, sizes)
	version := d.U8()
	flags := d.U8()
	nameSize := int(d.U16())
	typeSize := int(d.U16())
	spaceSize := int(d.U16())

	align := func(n int) int { return n }
	switch version {
	case 1:
		align = pad8
	case 2:
	case 3:
		d.Skip(1) // name encoding
	default:
		return nil, versionError("attribute", version)
	}
	if flags&0x03 != 0 {
		return nil, fmt.Errorf("attribute: %w", ErrShared)
	}

	name := d.Bytes(align(nameSize))
	typeBuf := d.Bytes(align(typeSize))
	spaceBuf := d.Bytes(align(spaceSize))
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("attribute: %w", err)
	}

	a := &Attribute{Name: trimNUL(name)}
	var err error
	if a.Datatype, _, err = ParseDatatype(typeBuf[:typeSize]); err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
	}
	if a.Dataspace, err = ParseDataspace(spaceBuf[:spaceSize], sizes); err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
	}

	n := int(a.Dataspace.NumElements()) * int(a.Datatype.Size)
	a.Data = d.Bytes(n)
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("attribute %q data: %w", a.Name, err)
	}
	return a, nil
}

// Encode returns a version 3 attribute message with a UTF-8 name.
func (a *Attribute) Encode(sizes binary.Sizes) ([]byte, error) {
	dt, err := a.Datatype.Encode(sizes)
	if err != nil {
		return nil, err
	}
	ds := a.Dataspace.Encode(sizes)
	name := append([]byte(a.Name), 0)

	e := binary.NewEncoder(sizes)
	e.U8(3)
	e.U8(0)
	e.U16(uint16(len(name)))
	e.U16(uint16(len(dt)))
	e.U16(uint16(len(ds)))
	e.U8(CharsetUTF8)
	e.Raw(name)
	e.Raw(dt)
	e.Raw(ds)
	e.Raw(a.Data)
	return e.Bytes(), nil
}
