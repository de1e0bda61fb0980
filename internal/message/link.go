package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// LinkKind is the type of a link.
type LinkKind uint8

const (
	LinkHard     LinkKind = 0
	LinkSoft     LinkKind = 1
	LinkExternal LinkKind = 64
)

// Link is a decoded link message.
type Link struct {
	Name string
	Kind LinkKind

	// Address of the target object header, for hard links.
	Address uint64

	// Target path for soft links; file and object path for external links.
	Target     string
	TargetFile string
}

// ParseLink decodes a link message.
func ParseLink(data []byte, sizes binary.Sizes) (*Link, error) {
	d := binary.NewDecoder(data, sizes)
	if version := d.U8(); version != 1 {
		return nil, versionError("link", version)
	}
	flags := d.U8()

	l := &Link{Kind: LinkHard}
	if flags&0x08 != 0 {
		l.Kind = LinkKind(d.U8())
	}
	if flags&0x04 != 0 {
		d.Skip(8) // creation order
	}
	if flags&0x10 != 0 {
		d.Skip(1) // name character set
	}
	nameLen := int(d.Uint(1 << (flags & 0x03)))
	l.Name = string(d.Bytes(nameLen))

	switch l.Kind {
	case LinkHard:
		l.Address = d.Offset()
	case LinkSoft:
		n := int(d.U16())
		l.Target = string(d.Bytes(n))
	case LinkExternal:
		n := int(d.U16())
		ext := binary.NewDecoder(d.Bytes(n), sizes)
		ext.Skip(1) // version and flags
		l.TargetFile = ext.CString()
		l.Target = ext.CString()
		if err := ext.Err(); err != nil {
			return nil, fmt.Errorf("external link %q: %w", l.Name, err)
		}
	default:
		return nil, fmt.Errorf("%w: link type %d", ErrUnsupported, l.Kind)
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	return l, nil
}

// Encode returns a version 1 hard link message.
func (l *Link) Encode(sizes binary.Sizes) ([]byte, error) {
	if l.Kind != LinkHard {
		return nil, fmt.Errorf("%w: encoding non-hard links", ErrUnsupported)
	}
	e := binary.NewEncoder(sizes)
	e.U8(1)

	var width uint8
	switch n := len(l.Name); {
	case n == 0:
		return nil, fmt.Errorf("link: empty name")
	case n < 1<<8:
		width = 0
	case n < 1<<16:
		width = 1
	default:
		width = 2
	}
	e.U8(width | 0x10)
	e.U8(CharsetUTF8)
	e.Uint(uint64(len(l.Name)), 1<<width)
	e.Raw([]byte(l.Name))
	e.Offset(l.Address)
	return e.Bytes(), nil
}

// LinkInfo is a decoded link info message. A defined FractalHeap means the
// group stores its links densely.
type LinkInfo struct {
	FractalHeap uint64
	NameIndex   uint64
}

// Dense reports whether links live in a fractal heap instead of link
// messages.
func (li *LinkInfo) Dense() bool { return li.FractalHeap != binary.Undefined }

// ParseLinkInfo decodes a link info message.
func ParseLinkInfo(data []byte, sizes binary.Sizes) (*LinkInfo, error) {
	d := binary.NewDecoder(data, sizes)
	if version := d.U8(); version != 0 {
		return nil, versionError("link info", version)
	}
	flags := d.U8()
	if flags&0x01 != 0 {
		d.Skip(8)
	}
	li := &LinkInfo{FractalHeap: d.Offset(), NameIndex: d.Offset()}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("link info: %w", err)
	}
	return li, nil
}

// EncodeLinkInfo returns a link info message for a group with compact link
// storage and no creation-order tracking.
func EncodeLinkInfo(sizes binary.Sizes) []byte {
	e := binary.NewEncoder(sizes)
	e.U8(0)
	e.U8(0)
	e.Offset(binary.Undefined)
	e.Offset(binary.Undefined)
	return e.Bytes()
}

// EncodeGroupInfo returns a group info message using the library defaults
// for link phase change and estimated entry sizes.
func EncodeGroupInfo() []byte {
	return []byte{0, 0}
}

// AttributeInfo is a decoded attribute info message.
type AttributeInfo struct {
	FractalHeap uint64
	NameIndex   uint64
}

// Dense reports whether attributes live in a fractal heap.
func (ai *AttributeInfo) Dense() bool { return ai.FractalHeap != binary.Undefined }

// ParseAttributeInfo decodes an attribute info message.
func ParseAttributeInfo(data []byte, sizes binary.Sizes) (*AttributeInfo, error) {
	d := binary.NewDecoder(data, sizes)
	if version := d.U8(); version != 0 {
		return nil, versionError("attribute info", version)
	}
	flags := d.U8()
	if flags&0x01 != 0 {
		d.Skip(2)
	}
	ai := &AttributeInfo{FractalHeap: d.Offset(), NameIndex: d.Offset()}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("attribute info: %w", err)
	}
	return ai, nil
}
