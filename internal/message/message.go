package message

import (
	"errors"
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Type is a header message type.
type Type uint16

const (
	TypeNIL            Type = 0x00
	TypeDataspace      Type = 0x01
	TypeLinkInfo       Type = 0x02
	TypeDatatype       Type = 0x03
	TypeFillValueOld   Type = 0x04
	TypeFillValue      Type = 0x05
	TypeLink           Type = 0x06
	TypeExternalFiles  Type = 0x07
	TypeLayout         Type = 0x08
	TypeBogus          Type = 0x09
	TypeGroupInfo      Type = 0x0A
	TypeFilterPipeline Type = 0x0B
	TypeAttribute      Type = 0x0C
	TypeComment        Type = 0x0D
	TypeModTimeOld     Type = 0x0E
	TypeSharedTable    Type = 0x0F
	TypeContinuation   Type = 0x10
	TypeSymbolTable    Type = 0x11
	TypeModTime        Type = 0x12
	TypeBTreeK         Type = 0x13
	TypeDriverInfo     Type = 0x14
	TypeAttributeInfo  Type = 0x15
	TypeRefCount       Type = 0x16
)

var typeNames = map[Type]string{
	TypeNIL:            "nil",
	TypeDataspace:      "dataspace",
	TypeLinkInfo:       "link info",
	TypeDatatype:       "datatype",
	TypeFillValueOld:   "fill value (old)",
	TypeFillValue:      "fill value",
	TypeLink:           "link",
	TypeExternalFiles:  "external files",
	TypeLayout:         "layout",
	TypeBogus:          "bogus",
	TypeGroupInfo:      "group info",
	TypeFilterPipeline: "filter pipeline",
	TypeAttribute:      "attribute",
	TypeComment:        "comment",
	TypeModTimeOld:     "modification time (old)",
	TypeSharedTable:    "shared message table",
	TypeContinuation:   "continuation",
	TypeSymbolTable:    "symbol table",
	TypeModTime:        "modification time",
	TypeBTreeK:         "B-tree K values",
	TypeDriverInfo:     "driver info",
	TypeAttributeInfo:  "attribute info",
	TypeRefCount:       "reference count",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("message 0x%04x", uint16(t))
}

// Message flag bits.
const (
	FlagConstant uint8 = 0x01
	FlagShared   uint8 = 0x02
)

var (
	// ErrUnsupported is returned for message versions or features the
	// reader does not implement.
	ErrUnsupported = errors.New("message: unsupported")

	// ErrShared is returned for messages stored in the shared message heap
	// or as committed datatypes.
	ErrShared = errors.New("message: shared messages are not supported")
)

// Raw is an undecoded header message.
type Raw struct {
	Type  Type
	Flags uint8
	Data  []byte
}

// Shared reports whether the body is a reference to a shared message rather
// than the message itself.
func (m Raw) Shared() bool { return m.Flags&FlagShared != 0 }

// Continuation points at the next block of an object header.
type Continuation struct {
	Offset uint64
	Length uint64
}

// ParseContinuation decodes a continuation message.
func ParseContinuation(data []byte, sizes binary.Sizes) (*Continuation, error) {
	d := binary.NewDecoder(data, sizes)
	c := &Continuation{Offset: d.Offset(), Length: d.Length()}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("continuation: %w", err)
	}
	return c, nil
}

// SymbolTable locates the B-tree and local heap of an old-style group.
type SymbolTable struct {
	BTree     uint64
	LocalHeap uint64
}

// ParseSymbolTable decodes a symbol table message.
func ParseSymbolTable(data []byte, sizes binary.Sizes) (*SymbolTable, error) {
	d := binary.NewDecoder(data, sizes)
	st := &SymbolTable{BTree: d.Offset(), LocalHeap: d.Offset()}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("symbol table: %w", err)
	}
	return st, nil
}

func versionError(what string, v uint8) error {
	return fmt.Errorf("%w: %s version %d", ErrUnsupported, what, v)
}
