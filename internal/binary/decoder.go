// Package binary provides the low-level little-endian codec shared by the HDF5
// reader and writer: cursors over byte slices with variable-width offset and
// length fields, plus the checksums used by the format.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrShortBuffer is returned when a structure is truncated.
	ErrShortBuffer = errors.New("binary: short buffer")

	// ErrInvalidSize is returned for offset/length widths other than 2, 4 or 8.
	ErrInvalidSize = errors.New("binary: invalid offset/length size")

	// ErrChecksum is returned when a stored checksum does not match the data.
	ErrChecksum = errors.New("binary: checksum mismatch")
)

// Order is the byte order of every structure this package writes. HDF5 metadata
// is always little-endian.
var Order = binary.LittleEndian

// Undefined is the all-ones address HDF5 uses for "not allocated".
const Undefined = ^uint64(0)

// Sizes holds the widths of file offsets and lengths, both taken from the
// superblock.
type Sizes struct {
	Offset int
	Length int
}

// DefaultSizes are the 8-byte widths used for every file this module writes.
var DefaultSizes = Sizes{Offset: 8, Length: 8}

// Validate reports whether both widths are supported.
func (s Sizes) Validate() error {
	for _, n := range []int{s.Offset, s.Length} {
		if n != 2 && n != 4 && n != 8 {
			return fmt.Errorf("%w: %d", ErrInvalidSize, n)
		}
	}
	return nil
}

// IsUndefined reports whether addr is the undefined address for the offset width.
func (s Sizes) IsUndefined(addr uint64) bool {
	if s.Offset >= 8 {
		return addr == Undefined
	}
	return addr == (uint64(1)<<(8*uint(s.Offset)))-1
}

// Decoder reads fields sequentially from a byte slice. The first short read
// sets a sticky error; later reads return zero values, so callers check Err
// once after decoding a whole structure.
type Decoder struct {
	buf   []byte
	pos   int
	sizes Sizes
	err   error
}

// NewDecoder returns a decoder over buf.
func NewDecoder(buf []byte, sizes Sizes) *Decoder {
	return &Decoder{buf: buf, sizes: sizes}
}

// Err returns the first error encountered.
func (d *Decoder) Err() error { return d.err }

// Pos returns the number of bytes consumed.
func (d *Decoder) Pos() int { return d.pos }

// Len returns the number of unread bytes.
func (d *Decoder) Len() int { return len(d.buf) - d.pos }

// Sizes returns the configured offset and length widths.
func (d *Decoder) Sizes() Sizes { return d.sizes }

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.pos+n > len(d.buf) {
		d.err = fmt.Errorf("%w: need %d bytes at %d, have %d", ErrShortBuffer, n, d.pos, len(d.buf)-d.pos)
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// Bytes returns the next n bytes. The result aliases the underlying buffer.
func (d *Decoder) Bytes(n int) []byte { return d.take(n) }

// Skip advances past n bytes.
func (d *Decoder) Skip(n int) { d.take(n) }

// Seek moves the cursor to an absolute position.
func (d *Decoder) Seek(pos int) {
	if d.err == nil && (pos < 0 || pos > len(d.buf)) {
		d.err = fmt.Errorf("%w: seek to %d of %d", ErrShortBuffer, pos, len(d.buf))
		return
	}
	d.pos = pos
}

// Align advances the cursor to the next multiple of n, relative to the start
// of the buffer.
func (d *Decoder) Align(n int) {
	if r := d.pos % n; r != 0 {
		d.Skip(n - r)
	}
}

func (d *Decoder) U8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *Decoder) U16() uint16 {
	if b := d.take(2); b != nil {
		return Order.Uint16(b)
	}
	return 0
}

func (d *Decoder) U32() uint32 {
	if b := d.take(4); b != nil {
		return Order.Uint32(b)
	}
	return 0
}

func (d *Decoder) U64() uint64 {
	if b := d.take(8); b != nil {
		return Order.Uint64(b)
	}
	return 0
}

// Uint reads an n-byte little-endian unsigned integer, 1 <= n <= 8.
func (d *Decoder) Uint(n int) uint64 {
	b := d.take(n)
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Offset reads a file address. Undefined addresses are widened to Undefined.
func (d *Decoder) Offset() uint64 {
	v := d.Uint(d.sizes.Offset)
	if d.err == nil && d.sizes.IsUndefined(v) {
		return Undefined
	}
	return v
}

// Length reads a length field.
func (d *Decoder) Length() uint64 { return d.Uint(d.sizes.Length) }

// CString reads a NUL-terminated string, consuming the terminator.
func (d *Decoder) CString() string {
	if d.err != nil {
		return ""
	}
	for i := d.pos; i < len(d.buf); i++ {
		if d.buf[i] == 0 {
			s := string(d.buf[d.pos:i])
			d.pos = i + 1
			return s
		}
	}
	d.err = fmt.Errorf("%w: unterminated string at %d", ErrShortBuffer, d.pos)
	return ""
}

// ReadAt reads exactly n bytes at off.
func ReadAt(r io.ReaderAt, off uint64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, int64(off)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %d bytes at 0x%x", ErrShortBuffer, n, off)
		}
		return nil, err
	}
	return buf, nil
}

// ReadAtMost reads up to n bytes at off, returning fewer at end of file.
func ReadAtMost(r io.ReaderAt, off uint64, n int) ([]byte, error) {
	buf := make([]byte, n)
	m, err := r.ReadAt(buf, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:m], nil
}
