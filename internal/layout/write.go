package layout

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/btree"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/filter"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// Sink receives written storage. *alloc.Allocator satisfies it.
type Sink interface {
	btree.Space
	Append(b []byte, tag string) (uint64, error)
}

// maxChunkBytes is the largest chunk a version 1 B-tree key can describe.
const maxChunkBytes = 1<<32 - 1

// WriteContiguous stores data as one block. Empty data is left unallocated.
func WriteContiguous(s Sink, data []byte) (*message.Layout, error) {
	l := &message.Layout{Version: 3, Class: message.LayoutContiguous, Address: binary.Undefined}
	if len(data) == 0 {
		return l, nil
	}
	addr, err := s.Append(data, "contiguous data")
	if err != nil {
		return nil, err
	}
	l.Address = addr
	l.Size = uint64(len(data))
	return l, nil
}

// CheckChunks validates a chunk shape against the dataset shape.
func CheckChunks(dims, chunks []uint64, elemSize int) error {
	if len(chunks) != len(dims) {
		return fmt.Errorf("layout: rank %d chunks for rank %d data", len(chunks), len(dims))
	}
	if len(dims) == 0 {
		return fmt.Errorf("layout: scalar data cannot be chunked")
	}
	bytes := uint64(elemSize)
	for i, c := range chunks {
		if c == 0 {
			return fmt.Errorf("layout: chunk dimension %d is zero", i)
		}
		if dims[i] > 0 && c > dims[i] {
			return fmt.Errorf("layout: chunk dimension %d is %d, data extent %d", i, c, dims[i])
		}
		bytes *= c
	}
	if bytes > maxChunkBytes {
		return fmt.Errorf("layout: chunk of %d bytes exceeds 4 GiB", bytes)
	}
	return nil
}

// WriteChunked cuts data, a row-major array of dims, into chunks, runs each
// through p (nil for none), stores them and indexes them with a version 1
// B-tree. Edge chunks are padded with zeros to the full chunk shape.
func WriteChunked(s Sink, sizes binary.Sizes, data []byte, dims, chunkDims []uint64, elemSize int, p *filter.Pipeline) (*message.Layout, error) {
	if err := CheckChunks(dims, chunkDims, elemSize); err != nil {
		return nil, err
	}
	if uint64(len(data)) != product(dims)*uint64(elemSize) {
		return nil, fmt.Errorf("layout: %d bytes for %v elements of %d bytes", len(data), dims, elemSize)
	}
	l := &message.Layout{
		Version:     3,
		Class:       message.LayoutChunked,
		ChunkDims:   chunkDims,
		ElementSize: uint32(elemSize),
		Index:       message.IndexBTreeV1,
	}

	zero := make([]uint64, len(dims))
	var chunks []btree.Chunk
	for _, origin := range gridOrigins(dims, chunkDims) {
		lo, hi, _ := overlap(origin, chunkDims, zero, dims, dims)
		box := make([]uint64, len(lo))
		dst := make([]uint64, len(lo))
		for i := range lo {
			box[i] = hi[i] - lo[i]
		}
		raw := make([]byte, l.ChunkBytes())
		copyBox(raw, chunkDims, dst, data, dims, origin, box, elemSize, 0)

		stored, mask := raw, uint32(0)
		if p != nil {
			var err error
			stored, mask, err = p.Encode(raw)
			if err != nil {
				return nil, fmt.Errorf("layout: chunk %v: %w", origin, err)
			}
		}
		addr, err := s.Append(stored, "chunk")
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, btree.Chunk{Offset: origin, Size: uint32(len(stored)), FilterMask: mask, Address: addr})
	}

	root, err := btree.WriteChunks(s, sizes, chunks, chunkDims)
	if err != nil {
		return nil, err
	}
	l.Address = root
	return l, nil
}
