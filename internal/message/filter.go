package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// FilterOptional is the filter flag bit allowing the filter to fail on a
// chunk, in which case the chunk is stored with that filter skipped.
const FilterOptional uint16 = 0x0001

// FilterInfo is one entry of a filter pipeline message.
type FilterInfo struct {
	ID     uint16
	Flags  uint16
	Name   string
	Values []uint32
}

// Optional reports whether the filter may be skipped per chunk.
func (f FilterInfo) Optional() bool { return f.Flags&FilterOptional != 0 }

// Pipeline is a decoded filter pipeline message, in application order.
type Pipeline struct {
	Filters []FilterInfo
}

// ParsePipeline decodes a filter pipeline message.
func ParsePipeline(data []byte) (*Pipeline, error) {
	d := binary.NewDecoder(data, binary.DefaultSizes)
	version := d.U8()
	n := int(d.U8())
	if version == 1 {
		d.Skip(6)
	} else if version != 2 {
		return nil, versionError("filter pipeline", version)
	}

	p := &Pipeline{Filters: make([]FilterInfo, n)}
	for i := range p.Filters {
		f := &p.Filters[i]
		f.ID = d.U16()
		nameLen := 0
		if version == 1 || f.ID >= 256 {
			nameLen = int(d.U16())
		}
		f.Flags = d.U16()
		nvals := int(d.U16())
		if nameLen > 0 {
			f.Name = trimNUL(d.Bytes(nameLen))
		}
		f.Values = make([]uint32, nvals)
		for j := range f.Values {
			f.Values[j] = d.U32()
		}
		if version == 1 && nvals%2 == 1 {
			d.Skip(4)
		}
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("filter pipeline: %w", err)
	}
	return p, nil
}

// Encode returns a version 2 filter pipeline message.
func (p *Pipeline) Encode() []byte {
	e := binary.NewEncoder(binary.DefaultSizes)
	e.U8(2)
	e.U8(uint8(len(p.Filters)))
	for _, f := range p.Filters {
		e.U16(f.ID)
		var name []byte
		if f.ID >= 256 {
			name = append([]byte(f.Name), 0)
			e.U16(uint16(len(name)))
		}
		e.U16(f.Flags)
		e.U16(uint16(len(f.Values)))
		e.Raw(name)
		for _, v := range f.Values {
			e.U32(v)
		}
	}
	return e.Bytes()
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
