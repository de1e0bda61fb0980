package heap

import (
	"bytes"
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Local is a loaded local heap data segment.
type Local struct {
	data []byte
}

// ReadLocal reads the local heap whose header is at addr.
func ReadLocal(r io.ReaderAt, addr uint64, sizes binary.Sizes) (*Local, error) {
	hdr, err := binary.ReadAt(r, addr, 8+2*sizes.Length+sizes.Offset)
	if err != nil {
		return nil, fmt.Errorf("local heap at 0x%x: %w", addr, err)
	}
	d := binary.NewDecoder(hdr, sizes)
	if sig := string(d.Bytes(4)); sig != "HEAP" {
		return nil, fmt.Errorf("local heap at 0x%x: bad signature %q", addr, sig)
	}
	if v := d.U8(); v != 0 {
		return nil, fmt.Errorf("local heap at 0x%x: unsupported version %d", addr, v)
	}
	d.Skip(3)
	size := d.Length()
	d.Length() // free list head
	dataAddr := d.Offset()
	if err := d.Err(); err != nil {
		return nil, err
	}

	data, err := binary.ReadAt(r, dataAddr, int(size))
	if err != nil {
		return nil, fmt.Errorf("local heap data at 0x%x: %w", dataAddr, err)
	}
	return &Local{data: data}, nil
}

// String returns the NUL-terminated string at off.
func (h *Local) String(off uint64) (string, error) {
	if off >= uint64(len(h.data)) {
		return "", fmt.Errorf("local heap offset %d out of range (%d bytes)", off, len(h.data))
	}
	rest := h.data[off:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		return string(rest[:i]), nil
	}
	return string(rest), nil
}
