package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// LayoutClass is the storage class of a dataset.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "compact"
	case LayoutContiguous:
		return "contiguous"
	case LayoutChunked:
		return "chunked"
	case LayoutVirtual:
		return "virtual"
	}
	return fmt.Sprintf("layout(%d)", uint8(c))
}

// ChunkIndex identifies how chunk addresses are found. Layout versions 1-3
// always use a version 1 B-tree; version 4 stores one of the other kinds.
type ChunkIndex uint8

const (
	IndexBTreeV1    ChunkIndex = 0
	IndexSingle     ChunkIndex = 1
	IndexImplicit   ChunkIndex = 2
	IndexFixedArray ChunkIndex = 3
	IndexExtensible ChunkIndex = 4
	IndexBTreeV2    ChunkIndex = 5
)

func (i ChunkIndex) String() string {
	switch i {
	case IndexBTreeV1:
		return "v1 B-tree"
	case IndexSingle:
		return "single chunk"
	case IndexImplicit:
		return "implicit"
	case IndexFixedArray:
		return "fixed array"
	case IndexExtensible:
		return "extensible array"
	case IndexBTreeV2:
		return "v2 B-tree"
	}
	return fmt.Sprintf("index(%d)", uint8(i))
}

// Layout is a decoded data layout message.
type Layout struct {
	Version uint8
	Class   LayoutClass

	// Address of contiguous data or of the chunk index. Undefined when
	// storage has not been allocated.
	Address uint64

	// Size of contiguous storage. Zero for version 1 and 2 messages, where
	// the reader derives it from the dataspace.
	Size uint64

	CompactData []byte

	// Chunked layouts. ChunkDims excludes the trailing element-size
	// dimension that the message stores.
	ChunkDims   []uint64
	ElementSize uint32
	Index       ChunkIndex

	// Single-chunk index with filters.
	SingleSize uint64
	SingleMask uint32
}

// ChunkBytes returns the unfiltered size of one chunk.
func (l *Layout) ChunkBytes() uint64 {
	n := uint64(l.ElementSize)
	for _, d := range l.ChunkDims {
		n *= d
	}
	return n
}

// ParseLayout decodes a data layout message.
func ParseLayout(data []byte, sizes binary.Sizes) (*Layout, error) {
	d := binary.NewDecoder(data, sizes)
	l := &Layout{Version: d.U8(), Address: binary.Undefined}

	var err error
	switch l.Version {
	case 1, 2:
		err = parseLayoutV1(d, l)
	case 3, 4:
		err = parseLayoutV3(d, l)
	default:
		return nil, versionError("layout", l.Version)
	}
	if err != nil {
		return nil, err
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return l, nil
}

func parseLayoutV1(d *binary.Decoder, l *Layout) error {
	ndims := int(d.U8())
	l.Class = LayoutClass(d.U8())
	d.Skip(5)
	if l.Class != LayoutCompact {
		l.Address = d.Offset()
	}
	dims := make([]uint64, ndims)
	for i := range dims {
		dims[i] = uint64(d.U32())
	}
	switch l.Class {
	case LayoutChunked:
		if ndims < 2 {
			return fmt.Errorf("layout: chunked with %d dimensions", ndims)
		}
		l.ChunkDims = dims[:ndims-1]
		l.ElementSize = uint32(dims[ndims-1])
	case LayoutCompact:
		n := int(d.U32())
		l.CompactData = d.Bytes(n)
	case LayoutContiguous:
	default:
		return fmt.Errorf("%w: layout class %d", ErrUnsupported, l.Class)
	}
	return nil
}

func parseLayoutV3(d *binary.Decoder, l *Layout) error {
	l.Class = LayoutClass(d.U8())
	switch l.Class {
	case LayoutCompact:
		n := int(d.U16())
		l.CompactData = d.Bytes(n)
	case LayoutContiguous:
		l.Address = d.Offset()
		l.Size = d.Length()
	case LayoutChunked:
		if l.Version == 3 {
			return parseChunkedV3(d, l)
		}
		return parseChunkedV4(d, l)
	case LayoutVirtual:
		return fmt.Errorf("%w: virtual datasets", ErrUnsupported)
	default:
		return fmt.Errorf("layout: invalid class %d", l.Class)
	}
	return nil
}

func parseChunkedV3(d *binary.Decoder, l *Layout) error {
	ndims := int(d.U8())
	if ndims < 2 {
		return fmt.Errorf("layout: chunked with %d dimensions", ndims)
	}
	l.Index = IndexBTreeV1
	l.Address = d.Offset()
	l.ChunkDims = make([]uint64, ndims-1)
	for i := range l.ChunkDims {
		l.ChunkDims[i] = uint64(d.U32())
	}
	l.ElementSize = d.U32()
	return nil
}

func parseChunkedV4(d *binary.Decoder, l *Layout) error {
	flags := d.U8()
	ndims := int(d.U8())
	width := int(d.U8())
	if ndims < 2 {
		return fmt.Errorf("layout: chunked with %d dimensions", ndims)
	}
	l.ChunkDims = make([]uint64, ndims-1)
	for i := range l.ChunkDims {
		l.ChunkDims[i] = d.Uint(width)
	}
	l.ElementSize = uint32(d.Uint(width))
	l.Index = ChunkIndex(d.U8())
	switch l.Index {
	case IndexSingle:
		if flags&0x02 != 0 {
			l.SingleSize = d.Length()
			l.SingleMask = d.U32()
		}
	case IndexImplicit:
	case IndexFixedArray:
		d.Skip(1)
	case IndexExtensible:
		d.Skip(5)
	case IndexBTreeV2:
		d.Skip(6)
	default:
		return fmt.Errorf("layout: invalid chunk index %d", l.Index)
	}
	l.Address = d.Offset()
	return nil
}

// Encode returns a version 3 layout message. Chunked layouts always use a
// version 1 B-tree index.
func (l *Layout) Encode(sizes binary.Sizes) ([]byte, error) {
	e := binary.NewEncoder(sizes)
	e.U8(3)
	e.U8(uint8(l.Class))
	switch l.Class {
	case LayoutCompact:
		if len(l.CompactData) > 0xffff {
			return nil, fmt.Errorf("layout: compact data of %d bytes", len(l.CompactData))
		}
		e.U16(uint16(len(l.CompactData)))
		e.Raw(l.CompactData)
	case LayoutContiguous:
		e.Offset(l.Address)
		e.Length(l.Size)
	case LayoutChunked:
		e.U8(uint8(len(l.ChunkDims) + 1))
		e.Offset(l.Address)
		for _, v := range l.ChunkDims {
			if v > 0xffffffff {
				return nil, fmt.Errorf("layout: chunk dimension %d too large", v)
			}
			e.U32(uint32(v))
		}
		e.U32(l.ElementSize)
	default:
		return nil, fmt.Errorf("%w: encoding %s layout", ErrUnsupported, l.Class)
	}
	return e.Bytes(), nil
}
