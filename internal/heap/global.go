package heap

import (
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// MinCollectionSize is the smallest collection the reference library
// allocates.
const MinCollectionSize = 4096

// ID addresses one object in a global heap collection.
type ID struct {
	Collection uint64
	Index      uint32
}

// Collection is a loaded global heap collection.
type Collection struct {
	objects map[uint32][]byte
}

// ReadCollection reads the collection at addr.
func ReadCollection(r io.ReaderAt, addr uint64, sizes binary.Sizes) (*Collection, error) {
	hdr, err := binary.ReadAt(r, addr, 8+sizes.Length)
	if err != nil {
		return nil, fmt.Errorf("global heap at 0x%x: %w", addr, err)
	}
	d := binary.NewDecoder(hdr, sizes)
	if sig := string(d.Bytes(4)); sig != "GCOL" {
		return nil, fmt.Errorf("global heap at 0x%x: bad signature %q", addr, sig)
	}
	if v := d.U8(); v != 1 {
		return nil, fmt.Errorf("global heap at 0x%x: unsupported version %d", addr, v)
	}
	d.Skip(3)
	size := d.Length()
	if err := d.Err(); err != nil {
		return nil, err
	}

	buf, err := binary.ReadAt(r, addr, int(size))
	if err != nil {
		return nil, fmt.Errorf("global heap at 0x%x: %w", addr, err)
	}
	c := &Collection{objects: make(map[uint32][]byte)}
	d = binary.NewDecoder(buf, sizes)
	d.Seek(len(hdr))
	objHeader := 8 + sizes.Length
	for d.Len() >= objHeader {
		index := d.U16()
		d.Skip(6) // reference count, reserved
		n := d.Length()
		if index == 0 {
			break // free space
		}
		c.objects[uint32(index)] = d.Bytes(int(n))
		d.Align(8)
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("global heap at 0x%x object %d: %w", addr, index, err)
		}
	}
	return c, nil
}

// Object returns the data of the object with the given index.
func (c *Collection) Object(index uint32) ([]byte, error) {
	b, ok := c.objects[index]
	if !ok {
		return nil, fmt.Errorf("global heap object %d not found", index)
	}
	return b, nil
}

// CollectionWriter accumulates objects for a single new collection.
type CollectionWriter struct {
	objects [][]byte
}

// Add appends an object and returns its one-based index.
func (w *CollectionWriter) Add(data []byte) uint32 {
	w.objects = append(w.objects, data)
	return uint32(len(w.objects))
}

// Len returns the number of objects added.
func (w *CollectionWriter) Len() int { return len(w.objects) }

// Encode returns the collection bytes. The remainder of the collection is
// described by a free-space object, as the reference library expects.
func (w *CollectionWriter) Encode(sizes binary.Sizes) []byte {
	e := binary.NewEncoder(sizes)
	e.Raw([]byte("GCOL"))
	e.U8(1)
	e.Zero(3)
	sizePos := e.Len()
	e.Length(0)

	for i, obj := range w.objects {
		e.U16(uint16(i + 1))
		e.U16(1) // reference count
		e.Zero(4)
		e.Length(uint64(len(obj)))
		e.Raw(obj)
		e.Pad(8)
	}

	objHeader := 8 + sizes.Length
	total := e.Len() + objHeader
	if total < MinCollectionSize {
		total = MinCollectionSize
	}
	free := total - e.Len()
	e.U16(0)
	e.U16(0)
	e.Zero(4)
	e.Length(uint64(free))
	e.Zero(free - objHeader)

	buf := e.Bytes()
	size := binary.NewEncoder(sizes)
	size.Length(uint64(total))
	copy(buf[sizePos:], size.Bytes())
	return buf
}
