package layout

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/alloc"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/filter"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
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

// iota16 returns n uint16 elements 0..n-1, little-endian.
func iota16(n int) []byte {
	out := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		binary.Order.PutUint16(out[2*i:], uint16(i))
	}
	return out
}

func elems16(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.Order.Uint16(b[2*i:])
	}
	return out
}

func TestExtract(t *testing.T) {
	data := iota16(3 * 4 * 5)
	got := extract(data, []uint64{3, 4, 5}, []uint64{1, 2, 3}, []uint64{2, 2, 2}, 2)
	assert.Equal(t, []uint16{33, 34, 38, 39, 53, 54, 58, 59}, elems16(got))
}

func TestGridOrigins(t *testing.T) {
	got := gridOrigins([]uint64{5, 4}, []uint64{2, 4})
	assert.Equal(t, [][]uint64{{0, 0}, {2, 0}, {4, 0}}, got)
	assert.Empty(t, gridOrigins([]uint64{0, 4}, []uint64{1, 1}))
}

func TestCompact(t *testing.T) {
	l, err := New(nil, binary.DefaultSizes, Storage{
		Layout:   &message.Layout{Class: message.LayoutCompact, CompactData: iota16(6)},
		Dims:     []uint64{2, 3},
		ElemSize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, message.LayoutCompact, l.Class())

	got, err := l.ReadSlice([]uint64{1, 1}, []uint64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint16{4, 5}, elems16(got))

	_, err = l.ReadSlice([]uint64{1, 2}, []uint64{1, 2})
	assert.ErrorIs(t, err, ErrBounds)
}

func TestContiguousRoundTrip(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 16)
	data := iota16(4 * 6)
	msg, err := WriteContiguous(a, data)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), msg.Address)
	assert.Equal(t, uint64(48), msg.Size)

	l, err := New(f, binary.DefaultSizes, Storage{Layout: msg, Dims: []uint64{4, 6}, ElemSize: 2})
	require.NoError(t, err)

	all, err := ReadAll(l, []uint64{4, 6})
	require.NoError(t, err)
	assert.Equal(t, data, all)

	got, err := l.ReadSlice([]uint64{1, 4}, []uint64{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint16{10, 11, 16, 17}, elems16(got))
}

func TestContiguousUnallocatedReadsFill(t *testing.T) {
	msg, err := WriteContiguous(alloc.New(&memFile{}, 0), nil)
	require.NoError(t, err)
	l, err := New(&memFile{}, binary.DefaultSizes, Storage{
		Layout: msg, Dims: []uint64{3}, ElemSize: 2, Fill: []byte{7, 0},
	})
	require.NoError(t, err)
	got, err := ReadAll(l, []uint64{3})
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 7, 7}, elems16(got))
}

func TestChunkedRoundTrip(t *testing.T) {
	pipe, err := filter.NewPipeline(&message.Pipeline{Filters: []message.FilterInfo{
		{ID: filter.IDShuffle, Flags: message.FilterOptional, Values: []uint32{2}},
		{ID: filter.IDDeflate, Flags: message.FilterOptional, Values: []uint32{4}},
	}}, 2)
	require.NoError(t, err)

	for _, p := range []*filter.Pipeline{nil, pipe} {
		f := &memFile{}
		a := alloc.New(f, 0)
		dims := []uint64{5, 7, 3}
		chunks := []uint64{2, 3, 3}
		data := iota16(5 * 7 * 3)

		msg, err := WriteChunked(a, binary.DefaultSizes, data, dims, chunks, 2, p)
		require.NoError(t, err)
		require.NoError(t, a.Validate())
		assert.Equal(t, uint64(2*3*3*2), msg.ChunkBytes())

		l, err := New(f, binary.DefaultSizes, Storage{Layout: msg, Dims: dims, ElemSize: 2, Pipeline: p})
		require.NoError(t, err)
		ch := l.(*Chunked)
		stored, err := ch.Chunks()
		require.NoError(t, err)
		assert.Len(t, stored, 3*3)

		all, err := ReadAll(l, dims)
		require.NoError(t, err)
		assert.Equal(t, data, all)

		got, err := l.ReadSlice([]uint64{3, 5, 1}, []uint64{2, 2, 2})
		require.NoError(t, err)
		want := extract(data, dims, []uint64{3, 5, 1}, []uint64{2, 2, 2}, 2)
		assert.Equal(t, want, got)
	}
}

func TestSingleChunkAndUnallocatedIndex(t *testing.T) {
	f := &memFile{}
	a := alloc.New(f, 0)
	chunk, err := a.Append(iota16(4), "chunk")
	require.NoError(t, err)

	msg := &message.Layout{
		Class: message.LayoutChunked, Index: message.IndexSingle,
		Address: chunk, ChunkDims: []uint64{4}, ElementSize: 2,
	}
	l, err := New(f, binary.DefaultSizes, Storage{Layout: msg, Dims: []uint64{4}, ElemSize: 2})
	require.NoError(t, err)
	got, err := ReadAll(l, []uint64{4})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 2, 3}, elems16(got))

	msg = &message.Layout{
		Class: message.LayoutChunked, Index: message.IndexBTreeV1,
		Address: binary.Undefined, ChunkDims: []uint64{2}, ElementSize: 2,
	}
	l, err = New(f, binary.DefaultSizes, Storage{Layout: msg, Dims: []uint64{4}, ElemSize: 2, Fill: []byte{9, 0}})
	require.NoError(t, err)
	got, err = ReadAll(l, []uint64{4})
	require.NoError(t, err)
	assert.Equal(t, []uint16{9, 9, 9, 9}, elems16(got))
}

func TestImplicitIndex(t *testing.T) {
	f := &memFile{}
	// two 2x2 chunks of a 2x4 array, stored back to back
	_, _ = f.WriteAt(append(iota16(4), iota16(4)...), 0)
	msg := &message.Layout{
		Class: message.LayoutChunked, Index: message.IndexImplicit,
		ChunkDims: []uint64{2, 2}, ElementSize: 2,
	}
	l, err := New(f, binary.DefaultSizes, Storage{Layout: msg, Dims: []uint64{2, 4}, ElemSize: 2})
	require.NoError(t, err)
	got, err := ReadAll(l, []uint64{2, 4})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 0, 1, 2, 3, 2, 3}, elems16(got))
}

func fixedArrayFile(t *testing.T, addrs []uint64) *memFile {
	t.Helper()
	sizes := binary.DefaultSizes
	f := &memFile{}
	block := binary.NewEncoder(sizes)
	block.Raw([]byte("FADB"))
	block.U8(0)
	block.U8(0)
	block.Offset(0x100)
	for _, a := range addrs {
		block.Offset(a)
	}
	block.AppendChecksum()
	_, _ = f.WriteAt(block.Bytes(), 0x200)

	head := binary.NewEncoder(sizes)
	head.Raw([]byte("FAHD"))
	head.U8(0)
	head.U8(0)
	head.U8(8)
	head.U8(10)
	head.Length(uint64(len(addrs)))
	head.Offset(0x200)
	head.AppendChecksum()
	_, _ = f.WriteAt(head.Bytes(), 0x100)
	return f
}

func TestFixedArrayIndex(t *testing.T) {
	f := fixedArrayFile(t, []uint64{0x400, binary.Undefined})
	_, _ = f.WriteAt(iota16(2), 0x400)

	msg := &message.Layout{
		Class: message.LayoutChunked, Index: message.IndexFixedArray,
		Address: 0x100, ChunkDims: []uint64{2}, ElementSize: 2,
	}
	l, err := New(f, binary.DefaultSizes, Storage{Layout: msg, Dims: []uint64{4}, ElemSize: 2})
	require.NoError(t, err)
	got, err := ReadAll(l, []uint64{4})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 0, 0}, elems16(got))
}

func TestCheckChunks(t *testing.T) {
	assert.NoError(t, CheckChunks([]uint64{4, 4}, []uint64{2, 4}, 8))
	assert.Error(t, CheckChunks([]uint64{4, 4}, []uint64{2}, 8))
	assert.Error(t, CheckChunks([]uint64{4, 4}, []uint64{0, 4}, 8))
	assert.Error(t, CheckChunks([]uint64{4, 4}, []uint64{5, 4}, 8))
	assert.Error(t, CheckChunks(nil, nil, 8))
}

func TestUnsupportedIndex(t *testing.T) {
	msg := &message.Layout{
		Class: message.LayoutChunked, Index: message.IndexBTreeV2,
		ChunkDims: []uint64{2}, ElementSize: 2,
	}
	_, err := New(&memFile{}, binary.DefaultSizes, Storage{Layout: msg, Dims: []uint64{4}, ElemSize: 2})
	assert.ErrorIs(t, err, ErrUnsupported)
}
