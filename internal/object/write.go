package object

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// Encode returns a version 2 object header holding msgs in a single chunk.
// Times and attribute phase change values are not stored.
func Encode(msgs []message.Raw, sizes binary.Sizes) ([]byte, error) {
	var chunk0 uint64
	for _, m := range msgs {
		if len(m.Data) > 0xffff {
			return nil, fmt.Errorf("object: %s message of %d bytes", m.Type, len(m.Data))
		}
		chunk0 += 4 + uint64(len(m.Data))
	}

	var width uint8
	switch {
	case chunk0 < 1<<8:
		width = 0
	case chunk0 < 1<<16:
		width = 1
	case chunk0 < 1<<32:
		width = 2
	default:
		width = 3
	}

	e := binary.NewEncoder(sizes)
	e.Raw([]byte("OHDR"))
	e.U8(2)
	e.U8(width)
	e.Uint(chunk0, 1<<width)
	for _, m := range msgs {
		e.U8(uint8(m.Type))
		e.U16(uint16(len(m.Data)))
		e.U8(m.Flags)
		e.Raw(m.Data)
	}
	e.AppendChecksum()
	return e.Bytes(), nil
}
