package layout

import (
	"errors"
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/filter"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

var (
	// ErrBounds is returned when a selection falls outside the dataset.
	ErrBounds = errors.New("layout: selection out of bounds")

	// ErrUnsupported is returned for storage this package cannot read.
	ErrUnsupported = errors.New("layout: unsupported storage")
)

// Storage gathers what a layout needs to know about its dataset.
type Storage struct {
	Layout   *message.Layout
	Dims     []uint64
	ElemSize int
	Pipeline *filter.Pipeline
	// Fill is one element's fill bytes, or nil for zeros.
	Fill []byte
}

func (s *Storage) numElements() uint64 {
	n := uint64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// Layout reads a dataset's raw bytes.
type Layout interface {
	// ReadSlice returns the box [start, start+count) in row-major order.
	ReadSlice(start, count []uint64) ([]byte, error)
	Class() message.LayoutClass
}

// New returns the layout reader for s.
func New(r io.ReaderAt, sizes binary.Sizes, s Storage) (Layout, error) {
	if s.Layout == nil {
		return nil, fmt.Errorf("layout: missing layout message")
	}
	if s.ElemSize <= 0 {
		return nil, fmt.Errorf("layout: element size %d", s.ElemSize)
	}
	switch s.Layout.Class {
	case message.LayoutCompact:
		return &Compact{s: s}, nil
	case message.LayoutContiguous:
		return &Contiguous{r: r, s: s}, nil
	case message.LayoutChunked:
		return newChunked(r, sizes, s)
	}
	return nil, fmt.Errorf("%w: %s layout", ErrUnsupported, s.Layout.Class)
}

// ReadAll returns every element of the dataset.
func ReadAll(l Layout, dims []uint64) ([]byte, error) {
	return l.ReadSlice(make([]uint64, len(dims)), dims)
}

func checkSelection(dims, start, count []uint64) error {
	if len(start) != len(dims) || len(count) != len(dims) {
		return fmt.Errorf("%w: rank %d selection on rank %d dataset", ErrBounds, len(start), len(dims))
	}
	for i := range dims {
		if start[i] > dims[i] || count[i] > dims[i]-start[i] {
			return fmt.Errorf("%w: dim %d start %d count %d extent %d", ErrBounds, i, start[i], count[i], dims[i])
		}
	}
	return nil
}

// filled returns n elements of es bytes set to fill.
func filled(n uint64, es int, fill []byte) []byte {
	out := make([]byte, n*uint64(es))
	if len(fill) != es {
		return out
	}
	allZero := true
	for _, b := range fill {
		allZero = allZero && b == 0
	}
	if !allZero {
		for i := 0; i < len(out); i += len(fill) {
			copy(out[i:], fill)
		}
	}
	return out
}

// Compact storage lives in the object header.
type Compact struct {
	s Storage
}

func (*Compact) Class() message.LayoutClass { return message.LayoutCompact }

func (c *Compact) ReadSlice(start, count []uint64) ([]byte, error) {
	if err := checkSelection(c.s.Dims, start, count); err != nil {
		return nil, err
	}
	need := c.s.numElements() * uint64(c.s.ElemSize)
	if uint64(len(c.s.Layout.CompactData)) < need {
		return nil, fmt.Errorf("layout: compact data holds %d of %d bytes", len(c.s.Layout.CompactData), need)
	}
	return extract(c.s.Layout.CompactData, c.s.Dims, start, count, c.s.ElemSize), nil
}

// Contiguous storage is one row-major block.
type Contiguous struct {
	r io.ReaderAt
	s Storage
}

func (*Contiguous) Class() message.LayoutClass { return message.LayoutContiguous }

// ReadSlice reads the smallest byte range covering the selection and copies
// the selection out of it.
func (c *Contiguous) ReadSlice(start, count []uint64) ([]byte, error) {
	if err := checkSelection(c.s.Dims, start, count); err != nil {
		return nil, err
	}
	n := product(count)
	if c.s.Layout.Address == binary.Undefined {
		return filled(n, c.s.ElemSize, c.s.Fill), nil
	}
	if n == 0 {
		return []byte{}, nil
	}
	es := uint64(c.s.ElemSize)
	last := make([]uint64, len(count))
	for i := range count {
		last[i] = start[i] + count[i] - 1
	}
	lo := linear(c.s.Dims, start) * es
	hi := (linear(c.s.Dims, last) + 1) * es
	buf, err := binary.ReadAt(c.r, c.s.Layout.Address+lo, int(hi-lo))
	if err != nil {
		return nil, fmt.Errorf("layout: contiguous data: %w", err)
	}
	if hi-lo == n*es {
		return buf, nil
	}
	out := make([]byte, n*es)
	// buf begins at start, so offsets into it are relative to start's row
	copyBox(out, count, make([]uint64, len(count)), buf, c.s.Dims, start, count, c.s.ElemSize, lo)
	return out, nil
}
