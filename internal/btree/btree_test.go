package btree

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/alloc"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

type memFile struct{ buf []byte }

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[off:], p)
	return len(p), nil
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func gridChunks(rows, cols int, dims []uint64) []Chunk {
	var out []Chunk
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, Chunk{
				Offset:     []uint64{uint64(r) * dims[0], uint64(c) * dims[1]},
				Size:       uint32(100 + r*cols + c),
				FilterMask: uint32(c % 2),
				Address:    uint64(0x10000 + (r*cols+c)*0x100),
			})
		}
	}
	return out
}

func TestWriteReadSingleLeaf(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 64)
	dims := []uint64{4, 8}
	chunks := gridChunks(2, 3, dims)

	root, err := WriteChunks(a, binary.DefaultSizes, chunks, dims)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), root)
	assert.Equal(t, uint64(64+NodeSize(binary.DefaultSizes, 2)), a.EOF())

	got, err := ReadChunks(f, root, binary.DefaultSizes, 2)
	require.NoError(t, err)
	assert.Equal(t, chunks, got)
}

func TestWriteReadMultiLevel(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 0)
	dims := []uint64{2, 2}
	chunks := gridChunks(15, 20, dims) // 300 chunks, 5 leaves under one root

	// shuffle input order; the writer sorts by offset
	reversed := make([]Chunk, len(chunks))
	for i, c := range chunks {
		reversed[len(chunks)-1-i] = c
	}

	root, err := WriteChunks(a, binary.DefaultSizes, reversed, dims)
	require.NoError(t, err)
	require.NoError(t, a.Validate())

	n, err := readNode(f, root, binary.DefaultSizes, nodeChunk, chunkKeySize(2))
	require.NoError(t, err)
	assert.Equal(t, 1, n.level)
	assert.Len(t, n.children, 5)

	leaf, err := readNode(f, n.children[0], binary.DefaultSizes, nodeChunk, chunkKeySize(2))
	require.NoError(t, err)
	assert.Equal(t, 0, leaf.level)
	assert.Len(t, leaf.children, 2*ChunkK)

	got, err := ReadChunks(f, root, binary.DefaultSizes, 2)
	require.NoError(t, err)
	assert.Equal(t, chunks, got)
}

func TestSiblingLinks(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 0)
	dims := []uint64{1, 1}
	_, err := WriteChunks(a, binary.DefaultSizes, gridChunks(1, 130, dims), dims)
	require.NoError(t, err)

	size := uint64(NodeSize(binary.DefaultSizes, 2))
	// leaves occupy the first three node slots
	d := binary.NewDecoder(f.buf[8:24], binary.DefaultSizes)
	assert.Equal(t, binary.Undefined, d.Offset(), "first leaf has no left sibling")
	assert.Equal(t, size, d.Offset())

	d = binary.NewDecoder(f.buf[2*size+8:2*size+24], binary.DefaultSizes)
	assert.Equal(t, size, d.Offset())
	assert.Equal(t, binary.Undefined, d.Offset(), "last leaf has no right sibling")
}

func TestLastKeyClosesChunk(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 0)
	dims := []uint64{3, 5}
	root, err := WriteChunks(a, binary.DefaultSizes, gridChunks(1, 2, dims), dims)
	require.NoError(t, err)

	n, err := readNode(f, root, binary.DefaultSizes, nodeChunk, chunkKeySize(2))
	require.NoError(t, err)
	last := decodeChunkKey(n.keys[len(n.keys)-1], 2)
	assert.Equal(t, []uint64{3, 10}, last.Offset)
}

func TestWriteEmpty(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 0)
	root, err := WriteChunks(a, binary.DefaultSizes, nil, []uint64{4})
	require.NoError(t, err)

	got, err := ReadChunks(f, root, binary.DefaultSizes, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadChunksRejectsGroupTree(t *testing.T) {
	f := &memFile{}
	sizes := binary.DefaultSizes
	_, _ = f.WriteAt(EncodeGroupLeaf(nil, []uint64{0}, sizes), 0)

	_, err := ReadChunks(f, 0, sizes, 2)
	assert.ErrorIs(t, err, ErrNodeType)
}

func TestBadSignature(t *testing.T) {
	f := &memFile{buf: make([]byte, 256)}
	copy(f.buf, "XXXX")
	_, err := ReadChunks(f, 0, binary.DefaultSizes, 1)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestWalkGroup(t *testing.T) {
	for _, sizes := range []binary.Sizes{{Offset: 8, Length: 8}, {Offset: 4, Length: 4}} {
		f := &memFile{}
		soft := GroupEntry{NameOffset: 24, CacheType: CacheSoftLink, Address: binary.Undefined}
		binary.Order.PutUint32(soft.Scratch[:4], 40)

		snod1 := EncodeSymbolNode([]GroupEntry{
			{NameOffset: 8, Address: 0x800},
			{NameOffset: 16, Address: 0x900, CacheType: CacheGroup},
		}, sizes)
		snod2 := EncodeSymbolNode([]GroupEntry{soft}, sizes)
		_, _ = f.WriteAt(snod1, 0x100)
		_, _ = f.WriteAt(snod2, 0x200)
		_, _ = f.WriteAt(EncodeGroupLeaf([]uint64{0x100, 0x200}, []uint64{0, 16, 24}, sizes), 0x10)

		var got []GroupEntry
		err := WalkGroup(f, 0x10, sizes, func(e GroupEntry) error {
			got = append(got, e)
			return nil
		})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, uint64(0x800), got[0].Address)
		assert.Equal(t, uint64(16), got[1].NameOffset)
		assert.Equal(t, binary.Undefined, got[2].Address)

		off, ok := got[2].SoftLinkOffset()
		assert.True(t, ok)
		assert.Equal(t, uint64(40), off)
		_, ok = got[0].SoftLinkOffset()
		assert.False(t, ok)
	}
}

func TestWalkGroupStops(t *testing.T) {
	sizes := binary.DefaultSizes
	f := &memFile{}
	_, _ = f.WriteAt(EncodeSymbolNode([]GroupEntry{{Address: 1}, {Address: 2}}, sizes), 0x100)
	_, _ = f.WriteAt(EncodeGroupLeaf([]uint64{0x100}, []uint64{0, 0}, sizes), 0)

	stop := errors.New("stop")
	calls := 0
	err := WalkGroup(f, 0, sizes, func(GroupEntry) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
