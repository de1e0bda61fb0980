package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// SpaceKind distinguishes scalar, simple and null dataspaces.
type SpaceKind uint8

const (
	SpaceScalar SpaceKind = 0
	SpaceSimple SpaceKind = 1
	SpaceNull   SpaceKind = 2
)

// Unlimited marks an unlimited maximum dimension.
const Unlimited = binary.Undefined

// Dataspace describes the shape of a dataset or attribute.
type Dataspace struct {
	Kind    SpaceKind
	Dims    []uint64
	MaxDims []uint64
}

// Scalar returns a scalar dataspace.
func Scalar() *Dataspace { return &Dataspace{Kind: SpaceScalar} }

// Simple returns a simple dataspace with fixed dimensions.
func Simple(dims ...uint64) *Dataspace {
	return &Dataspace{Kind: SpaceSimple, Dims: append([]uint64(nil), dims...)}
}

// Rank returns the number of dimensions.
func (s *Dataspace) Rank() int { return len(s.Dims) }

// NumElements returns the number of elements: 1 for scalars, 0 for null
// dataspaces.
func (s *Dataspace) NumElements() uint64 {
	switch s.Kind {
	case SpaceNull:
		return 0
	case SpaceScalar:
		return 1
	}
	n := uint64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// ParseDataspace decodes a dataspace message.
func ParseDataspace(data []byte, sizes binary.Sizes) (*Dataspace, error) {
	d := binary.NewDecoder(data, sizes)
	version := d.U8()
	rank := int(d.U8())
	flags := d.U8()

	s := &Dataspace{Kind: SpaceSimple}
	switch version {
	case 1:
		d.Skip(5)
		if rank == 0 {
			s.Kind = SpaceScalar
		}
	case 2:
		s.Kind = SpaceKind(d.U8())
		if s.Kind > SpaceNull {
			return nil, fmt.Errorf("dataspace: invalid type %d", s.Kind)
		}
	default:
		return nil, versionError("dataspace", version)
	}

	if rank > 0 {
		s.Dims = make([]uint64, rank)
		for i := range s.Dims {
			s.Dims[i] = d.Length()
		}
		if flags&0x01 != 0 {
			s.MaxDims = make([]uint64, rank)
			for i := range s.MaxDims {
				s.MaxDims[i] = d.Length()
			}
		}
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("dataspace: %w", err)
	}
	return s, nil
}

// Encode returns a version 2 dataspace message.
func (s *Dataspace) Encode(sizes binary.Sizes) []byte {
	e := binary.NewEncoder(sizes)
	e.U8(2)
	e.U8(uint8(len(s.Dims)))
	var flags uint8
	if len(s.MaxDims) == len(s.Dims) && len(s.MaxDims) > 0 {
		flags |= 0x01
	}
	e.U8(flags)
	kind := s.Kind
	if kind == SpaceSimple && len(s.Dims) == 0 {
		kind = SpaceScalar
	}
	e.U8(uint8(kind))
	for _, v := range s.Dims {
		e.Length(v)
	}
	if flags&0x01 != 0 {
		for _, v := range s.MaxDims {
			e.Length(v)
		}
	}
	return e.Bytes()
}
