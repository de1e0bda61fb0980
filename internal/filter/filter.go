package filter

import (
	"errors"
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// Registered filter identifiers.
const (
	IDDeflate     uint16 = 1
	IDShuffle     uint16 = 2
	IDFletcher32  uint16 = 3
	IDSZIP        uint16 = 4
	IDNBit        uint16 = 5
	IDScaleOffset uint16 = 6
	IDLZF         uint16 = 32000
)

var (
	// ErrUnsupported is returned for filters this package cannot apply.
	ErrUnsupported = errors.New("filter: unsupported")

	// ErrIncompressible is returned by Encode when the output would not be
	// smaller than the input.
	ErrIncompressible = errors.New("filter: data did not compress")

	// ErrCorrupt is returned when encoded data fails to decode.
	ErrCorrupt = errors.New("filter: corrupt data")
)

// Filter transforms chunk bytes.
type Filter interface {
	ID() uint16
	Encode(in []byte) ([]byte, error)
	Decode(in []byte) ([]byte, error)
}

type constructor func(cd []uint32, elemSize int) Filter

var registry = map[uint16]constructor{
	IDDeflate:    func(cd []uint32, _ int) Filter { return NewDeflate(cd) },
	IDShuffle:    func(cd []uint32, elemSize int) Filter { return NewShuffle(cd, elemSize) },
	IDFletcher32: func([]uint32, int) Filter { return Fletcher32{} },
	IDLZF:        func(cd []uint32, _ int) Filter { return NewLZF(cd) },
}

var names = map[uint16]string{
	IDDeflate:     "deflate",
	IDShuffle:     "shuffle",
	IDFletcher32:  "fletcher32",
	IDSZIP:        "szip",
	IDNBit:        "nbit",
	IDScaleOffset: "scaleoffset",
	IDLZF:         "lzf",
}

// Name returns the conventional name of a filter ID.
func Name(id uint16) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("filter-%d", id)
}

// Supported reports whether id can be applied.
func Supported(id uint16) bool {
	_, ok := registry[id]
	return ok
}

// New builds the filter described by info. elemSize is the dataset's element
// size, used when the stored client data omits it.
func New(info message.FilterInfo, elemSize int) (Filter, error) {
	c, ok := registry[info.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s (id %d)", ErrUnsupported, Name(info.ID), info.ID)
	}
	return c(info.Values, elemSize), nil
}
