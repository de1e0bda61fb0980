package layout

import (
	"fmt"
	"io"
	"sync"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/btree"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// Chunked storage is a grid of separately stored chunks.
type Chunked struct {
	r     io.ReaderAt
	sizes binary.Sizes
	s     Storage

	once   sync.Once
	chunks []btree.Chunk
	err    error
}

func newChunked(r io.ReaderAt, sizes binary.Sizes, s Storage) (*Chunked, error) {
	l := s.Layout
	if len(l.ChunkDims) != len(s.Dims) {
		return nil, fmt.Errorf("layout: rank %d chunks on rank %d dataset", len(l.ChunkDims), len(s.Dims))
	}
	for i, d := range l.ChunkDims {
		if d == 0 {
			return nil, fmt.Errorf("layout: chunk dimension %d is zero", i)
		}
	}
	if int(l.ElementSize) != s.ElemSize {
		return nil, fmt.Errorf("layout: chunk element size %d, datatype size %d", l.ElementSize, s.ElemSize)
	}
	switch l.Index {
	case message.IndexBTreeV1, message.IndexSingle, message.IndexImplicit, message.IndexFixedArray:
	default:
		return nil, fmt.Errorf("%w: %s chunk index", ErrUnsupported, l.Index)
	}
	return &Chunked{r: r, sizes: sizes, s: s}, nil
}

func (*Chunked) Class() message.LayoutClass { return message.LayoutChunked }

// ChunkDims returns the chunk shape.
func (c *Chunked) ChunkDims() []uint64 { return c.s.Layout.ChunkDims }

// Chunks returns every allocated chunk. The index is read once.
func (c *Chunked) Chunks() ([]btree.Chunk, error) {
	c.once.Do(func() { c.chunks, c.err = c.readIndex() })
	return c.chunks, c.err
}

func (c *Chunked) readIndex() ([]btree.Chunk, error) {
	l := c.s.Layout
	if l.Address == binary.Undefined {
		return nil, nil
	}
	rank := len(c.s.Dims)
	switch l.Index {
	case message.IndexBTreeV1:
		return btree.ReadChunks(c.r, l.Address, c.sizes, rank)
	case message.IndexSingle:
		size := l.SingleSize
		if size == 0 {
			size = l.ChunkBytes()
		}
		return []btree.Chunk{{
			Offset:     make([]uint64, rank),
			Size:       uint32(size),
			FilterMask: l.SingleMask,
			Address:    l.Address,
		}}, nil
	case message.IndexImplicit:
		var out []btree.Chunk
		for i, origin := range gridOrigins(c.s.Dims, l.ChunkDims) {
			out = append(out, btree.Chunk{
				Offset:  origin,
				Size:    uint32(l.ChunkBytes()),
				Address: l.Address + uint64(i)*l.ChunkBytes(),
			})
		}
		return out, nil
	case message.IndexFixedArray:
		return readFixedArray(c.r, l.Address, c.sizes, gridOrigins(c.s.Dims, l.ChunkDims), l.ChunkBytes())
	}
	return nil, fmt.Errorf("%w: %s chunk index", ErrUnsupported, l.Index)
}

// ReadSlice decodes each chunk that meets the selection and copies the
// overlap. Unallocated chunks read as the fill value.
func (c *Chunked) ReadSlice(start, count []uint64) ([]byte, error) {
	if err := checkSelection(c.s.Dims, start, count); err != nil {
		return nil, err
	}
	chunks, err := c.Chunks()
	if err != nil {
		return nil, fmt.Errorf("layout: chunk index: %w", err)
	}
	out := filled(product(count), c.s.ElemSize, c.s.Fill)
	if len(out) == 0 {
		return out, nil
	}
	cdims := c.s.Layout.ChunkDims
	for _, ch := range chunks {
		lo, hi, ok := overlap(ch.Offset, cdims, start, count, c.s.Dims)
		if !ok {
			continue
		}
		data, err := c.readChunk(ch)
		if err != nil {
			return nil, err
		}
		box := make([]uint64, len(lo))
		srcOff := make([]uint64, len(lo))
		dstOff := make([]uint64, len(lo))
		for i := range lo {
			box[i] = hi[i] - lo[i]
			srcOff[i] = lo[i] - ch.Offset[i]
			dstOff[i] = lo[i] - start[i]
		}
		copyBox(out, count, dstOff, data, cdims, srcOff, box, c.s.ElemSize, 0)
	}
	return out, nil
}

func (c *Chunked) readChunk(ch btree.Chunk) ([]byte, error) {
	raw, err := binary.ReadAt(c.r, ch.Address, int(ch.Size))
	if err != nil {
		return nil, fmt.Errorf("layout: chunk %v at %#x: %w", ch.Offset, ch.Address, err)
	}
	data := raw
	if c.s.Pipeline != nil {
		data, err = c.s.Pipeline.Decode(raw, ch.FilterMask)
		if err != nil {
			return nil, fmt.Errorf("layout: chunk %v: %w", ch.Offset, err)
		}
	}
	if want := c.s.Layout.ChunkBytes(); uint64(len(data)) < want {
		return nil, fmt.Errorf("layout: chunk %v decoded to %d bytes, want %d", ch.Offset, len(data), want)
	}
	return data, nil
}
