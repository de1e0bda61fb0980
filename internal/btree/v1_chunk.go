package btree

import (
	"fmt"
	"io"
	"sort"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// ChunkK is the half fan-out of chunk trees written by WriteChunks. A node
// holds at most 2*ChunkK children.
const ChunkK = 32

// Chunk locates one stored chunk.
type Chunk struct {
	// Offset is the logical coordinate of the chunk's first element.
	Offset []uint64
	// Size is the number of bytes stored on disk after filtering.
	Size uint32
	// FilterMask has bit i set when filter i of the pipeline was skipped.
	FilterMask uint32
	Address    uint64
}

func chunkKeySize(rank int) int { return 8 + 8*(rank+1) }

// ReadChunks returns every chunk indexed by the tree at addr for a dataset of
// the given rank, in key order.
func ReadChunks(r io.ReaderAt, addr uint64, sizes binary.Sizes, rank int) ([]Chunk, error) {
	var out []Chunk
	err := readChunkNode(r, addr, sizes, rank, 0, &out)
	return out, err
}

func readChunkNode(r io.ReaderAt, addr uint64, sizes binary.Sizes, rank, depth int, out *[]Chunk) error {
	if depth > maxDepth {
		return fmt.Errorf("btree: chunk tree deeper than %d", maxDepth)
	}
	n, err := readNode(r, addr, sizes, nodeChunk, chunkKeySize(rank))
	if err != nil {
		return err
	}
	for i, child := range n.children {
		if n.level > 0 {
			if err := readChunkNode(r, child, sizes, rank, depth+1, out); err != nil {
				return err
			}
			continue
		}
		c := decodeChunkKey(n.keys[i], rank)
		c.Address = child
		*out = append(*out, c)
	}
	return nil
}

func decodeChunkKey(key []byte, rank int) Chunk {
	d := binary.NewDecoder(key, binary.DefaultSizes)
	c := Chunk{Size: d.U32(), FilterMask: d.U32(), Offset: make([]uint64, rank)}
	for i := range c.Offset {
		c.Offset[i] = d.U64()
	}
	return c
}

func encodeChunkKey(e *binary.Encoder, size, mask uint32, offset []uint64) {
	e.U32(size)
	e.U32(mask)
	for _, v := range offset {
		e.U64(v)
	}
	// trailing element-size dimension is always zero
	e.U64(0)
}

// Space reserves and writes file regions. *alloc.Allocator satisfies it.
type Space interface {
	AllocTagged(size uint64, tag string) uint64
	WriteAt(b []byte, addr uint64) error
}

// NodeSize is the on-disk size of a full chunk node of the given rank.
func NodeSize(sizes binary.Sizes, rank int) int {
	return nodeHeaderSize(sizes) + (2*ChunkK+1)*chunkKeySize(rank) + 2*ChunkK*sizes.Offset
}

type pending struct {
	first  Chunk // key of the first entry
	last   []uint64
	addr   uint64
	keys   []Chunk
	childs []uint64
}

// WriteChunks builds a chunk tree over chunks and returns the root address.
// chunkDims gives the chunk shape and closes the last key of the tree.
// Nodes are allocated at full size so other writers can extend them.
func WriteChunks(s Space, sizes binary.Sizes, chunks []Chunk, chunkDims []uint64) (uint64, error) {
	rank := len(chunkDims)
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return lessOffset(sorted[i].Offset, sorted[j].Offset) })

	end := func(c Chunk) []uint64 {
		out := make([]uint64, rank)
		for i := range out {
			out[i] = c.Offset[i] + chunkDims[i]
		}
		return out
	}

	var level []*pending
	if len(sorted) == 0 {
		level = append(level, &pending{first: Chunk{Offset: make([]uint64, rank)}, last: make([]uint64, rank)})
	}
	for start := 0; start < len(sorted); start += 2 * ChunkK {
		p := &pending{keys: sorted[start:min(start+2*ChunkK, len(sorted))]}
		for _, c := range p.keys {
			p.childs = append(p.childs, c.Address)
		}
		p.first = p.keys[0]
		p.last = end(p.keys[len(p.keys)-1])
		level = append(level, p)
	}

	for depth := 0; ; depth++ {
		if err := writeLevel(s, sizes, rank, depth, level); err != nil {
			return 0, err
		}
		if len(level) == 1 {
			return level[0].addr, nil
		}
		var up []*pending
		for start := 0; start < len(level); start += 2 * ChunkK {
			group := level[start:min(start+2*ChunkK, len(level))]
			p := &pending{first: group[0].first, last: group[len(group)-1].last}
			for _, g := range group {
				p.keys = append(p.keys, g.first)
				p.childs = append(p.childs, g.addr)
			}
			up = append(up, p)
		}
		level = up
	}
}

func writeLevel(s Space, sizes binary.Sizes, rank, depth int, level []*pending) error {
	size := uint64(NodeSize(sizes, rank))
	for _, p := range level {
		p.addr = s.AllocTagged(size, fmt.Sprintf("chunk btree level %d", depth))
	}
	for i, p := range level {
		left, right := binary.Undefined, binary.Undefined
		if i > 0 {
			left = level[i-1].addr
		}
		if i+1 < len(level) {
			right = level[i+1].addr
		}
		e := binary.NewEncoder(sizes)
		e.Raw(treeMagic[:])
		e.U8(nodeChunk)
		e.U8(uint8(depth))
		e.U16(uint16(len(p.childs)))
		e.Offset(left)
		e.Offset(right)
		for j, k := range p.keys {
			encodeChunkKey(e, k.Size, k.FilterMask, k.Offset)
			e.Offset(p.childs[j])
		}
		encodeChunkKey(e, 0, 0, p.last)
		if pad := int(size) - e.Len(); pad > 0 {
			e.Zero(pad)
		}
		if err := s.WriteAt(e.Bytes(), p.addr); err != nil {
			return err
		}
	}
	return nil
}

func lessOffset(a, b []uint64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
