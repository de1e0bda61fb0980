package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

var sizes = binary.DefaultSizes

func TestCollectionRoundTrip(t *testing.T) {
	var w CollectionWriter
	a := w.Add([]byte("float32"))
	b := w.Add([]byte("a longer string that spans several 8-byte words"))
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)

	buf := w.Encode(sizes)
	assert.Len(t, buf, MinCollectionSize)

	// Place the collection after some unrelated bytes.
	file := append(make([]byte, 64), buf...)
	c, err := ReadCollection(bytes.NewReader(file), 64, sizes)
	require.NoError(t, err)

	got, err := c.Object(a)
	require.NoError(t, err)
	assert.Equal(t, "float32", string(got))
	got, err = c.Object(b)
	require.NoError(t, err)
	assert.Equal(t, "a longer string that spans several 8-byte words", string(got))

	_, err = c.Object(3)
	assert.Error(t, err)
}

func TestCollectionGrowsPastMinimum(t *testing.T) {
	var w CollectionWriter
	w.Add(make([]byte, MinCollectionSize))
	buf := w.Encode(sizes)
	assert.Greater(t, len(buf), MinCollectionSize)
	assert.Zero(t, len(buf)%8)

	c, err := ReadCollection(bytes.NewReader(buf), 0, sizes)
	require.NoError(t, err)
	got, err := c.Object(1)
	require.NoError(t, err)
	assert.Len(t, got, MinCollectionSize)
}

func TestReadLocal(t *testing.T) {
	data := []byte("\x00datacube\x00metadata\x00\x00\x00\x00\x00\x00")
	e := binary.NewEncoder(sizes)
	e.Raw([]byte("HEAP"))
	e.U8(0)
	e.Zero(3)
	e.Length(uint64(len(data)))
	e.Length(binary.Undefined)
	e.Offset(32)
	e.Raw(data)

	h, err := ReadLocal(bytes.NewReader(e.Bytes()), 0, sizes)
	require.NoError(t, err)

	s, err := h.String(1)
	require.NoError(t, err)
	assert.Equal(t, "datacube", s)
	s, err = h.String(10)
	require.NoError(t, err)
	assert.Equal(t, "metadata", s)

	_, err = h.String(100)
	assert.Error(t, err)
}

func TestReadBadSignatures(t *testing.T) {
	junk := bytes.NewReader(make([]byte, 64))
	_, err := ReadLocal(junk, 0, sizes)
	assert.ErrorContains(t, err, "bad signature")
	_, err = ReadCollection(junk, 0, sizes)
	assert.ErrorContains(t, err, "bad signature")
}
