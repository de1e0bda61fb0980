package object

import (
	"errors"
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

var (
	ErrInvalid = errors.New("object: invalid header")
	ErrVersion = errors.New("object: unsupported header version")
)

// maxBlocks bounds the number of continuation blocks followed, so a corrupt
// file with a cycle cannot loop forever.
const maxBlocks = 4096

// Header is a parsed object header.
type Header struct {
	Version  uint8
	Address  uint64
	Messages []message.Raw
}

// Find returns the first message of type t.
func (h *Header) Find(t message.Type) (message.Raw, bool) {
	for _, m := range h.Messages {
		if m.Type == t {
			return m, true
		}
	}
	return message.Raw{}, false
}

// All returns every message of type t in header order.
func (h *Header) All(t message.Type) []message.Raw {
	var out []message.Raw
	for _, m := range h.Messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Read parses the object header at addr.
func Read(r io.ReaderAt, addr uint64, sizes binary.Sizes) (*Header, error) {
	peek, err := binary.ReadAt(r, addr, 4)
	if err != nil {
		return nil, fmt.Errorf("object header at 0x%x: %w", addr, err)
	}
	h := &Header{Address: addr}
	switch {
	case string(peek) == "OHDR":
		h.Version = 2
		err = readV2(r, h, sizes)
	case peek[0] == 1:
		h.Version = 1
		err = readV1(r, h, sizes)
	default:
		return nil, fmt.Errorf("%w at 0x%x", ErrVersion, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at 0x%x: %w", addr, err)
	}
	return h, nil
}

type block struct{ addr, length uint64 }

// collect appends the messages of one block, queueing continuations.
func (h *Header) collect(m message.Raw, sizes binary.Sizes, queue *[]block) error {
	switch m.Type {
	case message.TypeNIL:
		return nil
	case message.TypeContinuation:
		c, err := message.ParseContinuation(m.Data, sizes)
		if err != nil {
			return err
		}
		if len(*queue) >= maxBlocks {
			return fmt.Errorf("%w: too many continuation blocks", ErrInvalid)
		}
		*queue = append(*queue, block{c.Offset, c.Length})
		return nil
	}
	h.Messages = append(h.Messages, m)
	return nil
}

func readV1(r io.ReaderAt, h *Header, sizes binary.Sizes) error {
	prefix, err := binary.ReadAt(r, h.Address, 16)
	if err != nil {
		return err
	}
	d := binary.NewDecoder(prefix, sizes)
	d.Skip(2) // version, reserved
	remaining := int(d.U16())
	d.Skip(4) // reference count
	size := uint64(d.U32())

	queue := []block{{h.Address + 16, size}}
	for i := 0; i < len(queue); i++ {
		buf, err := binary.ReadAt(r, queue[i].addr, int(queue[i].length))
		if err != nil {
			return err
		}
		d := binary.NewDecoder(buf, sizes)
		for d.Len() >= 8 && remaining > 0 {
			typ := message.Type(d.U16())
			n := int(d.U16())
			flags := d.U8()
			d.Skip(3)
			data := d.Bytes(n)
			if err := d.Err(); err != nil {
				return fmt.Errorf("%w: message %s: %v", ErrInvalid, typ, err)
			}
			remaining--
			if err := h.collect(message.Raw{Type: typ, Flags: flags, Data: data}, sizes, &queue); err != nil {
				return err
			}
		}
	}
	return nil
}

func readV2(r io.ReaderAt, h *Header, sizes binary.Sizes) error {
	prefix, err := binary.ReadAtMost(r, h.Address, 4+2+16+4+8)
	if err != nil {
		return err
	}
	d := binary.NewDecoder(prefix, sizes)
	d.Skip(4)
	if v := d.U8(); v != 2 {
		return fmt.Errorf("%w: OHDR version %d", ErrVersion, v)
	}
	flags := d.U8()
	if flags&0x20 != 0 {
		d.Skip(16) // access, modification, change and birth times
	}
	if flags&0x10 != 0 {
		d.Skip(4) // attribute phase change values
	}
	chunk0 := d.Uint(1 << (flags & 0x03))
	if err := d.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	start := d.Pos()
	ordered := flags&0x04 != 0

	queue := []block{{h.Address, uint64(start) + chunk0 + 4}}
	for i := 0; i < len(queue); i++ {
		buf, err := binary.ReadAt(r, queue[i].addr, int(queue[i].length))
		if err != nil {
			return err
		}
		if err := binary.VerifyLookup3(buf); err != nil {
			return err
		}
		skip := start
		if i > 0 {
			if string(buf[:4]) != "OCHK" {
				return fmt.Errorf("%w: bad continuation signature at 0x%x", ErrInvalid, queue[i].addr)
			}
			skip = 4
		}
		if err := h.readV2Messages(buf[skip:len(buf)-4], ordered, sizes, &queue); err != nil {
			return err
		}
	}
	return nil
}

func (h *Header) readV2Messages(buf []byte, ordered bool, sizes binary.Sizes, queue *[]block) error {
	headerSize := 4
	if ordered {
		headerSize += 2
	}
	d := binary.NewDecoder(buf, sizes)
	for d.Len() >= headerSize {
		typ := message.Type(d.U8())
		n := int(d.U16())
		flags := d.U8()
		if ordered {
			d.Skip(2)
		}
		data := d.Bytes(n)
		if err := d.Err(); err != nil {
			return fmt.Errorf("%w: message %s: %v", ErrInvalid, typ, err)
		}
		if err := h.collect(message.Raw{Type: typ, Flags: flags, Data: data}, sizes, queue); err != nil {
			return err
		}
	}
	return nil
}
