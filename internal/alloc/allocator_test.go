package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct{ buf []byte }

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[off:], p)
	return len(p), nil
}

type failWriter struct{}

func (failWriter) WriteAt([]byte, int64) (int, error) { return 0, errors.New("disk full") }

func TestAllocSequential(t *testing.T) {
	a := New(&memFile{}, 1024)

	assert.Equal(t, uint64(1024), a.Alloc(100))
	assert.Equal(t, uint64(1124), a.Alloc(200))
	assert.Equal(t, uint64(1324), a.EOF())
	assert.Equal(t, uint64(1024), a.Base())
}

func TestAllocZeroSize(t *testing.T) {
	a := New(&memFile{}, 100)
	assert.Equal(t, uint64(100), a.Alloc(0))
	assert.Equal(t, uint64(100), a.EOF())
	assert.Empty(t, a.Blocks())
}

func TestAppendWrites(t *testing.T) {
	f := &memFile{}
	a := New(f, 8)

	addr, err := a.Append([]byte("abcd"), "first")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), addr)

	addr, err = a.Append([]byte("xy"), "second")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), addr)
	assert.Equal(t, []byte("abcdxy"), f.buf[8:14])

	blocks := a.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "second", blocks[1].Tag)
	require.NoError(t, a.Validate())
}

func TestWriteAtBounds(t *testing.T) {
	a := New(&memFile{}, 16)
	addr := a.Alloc(4)

	require.NoError(t, a.WriteAt([]byte{1, 2, 3, 4}, addr))
	assert.Error(t, a.WriteAt([]byte{1, 2, 3, 4, 5}, addr), "past eof")
	assert.Error(t, a.WriteAt([]byte{1}, 0), "before base")
}

func TestWriterError(t *testing.T) {
	a := New(failWriter{}, 0)
	_, err := a.Append([]byte{1}, "x")
	assert.ErrorContains(t, err, "disk full")
}

func TestValidateDetectsOverlap(t *testing.T) {
	a := New(&memFile{}, 0)
	a.Alloc(10)
	a.blocks = append(a.blocks, Block{Addr: 5, Size: 2, Tag: "bogus"})

	err := a.Validate()
	assert.ErrorIs(t, err, ErrOverlap)
}
