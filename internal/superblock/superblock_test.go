package superblock

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

func TestEncodeReadV2(t *testing.T) {
	buf := Encode(binary.DefaultSizes, 48, 4096)
	require.Len(t, buf, Size(binary.DefaultSizes))
	require.Len(t, buf, 48)

	sb, err := Read(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, uint8(2), sb.Version)
	assert.Equal(t, binary.DefaultSizes, sb.Sizes)
	assert.Equal(t, uint64(48), sb.Root)
	assert.Equal(t, uint64(4096), sb.EOF)
	assert.Zero(t, sb.Base)
	assert.Equal(t, binary.Undefined, sb.RootBTree)
}

func TestReadV2BadChecksum(t *testing.T) {
	buf := Encode(binary.DefaultSizes, 48, 4096)
	buf[20] ^= 1
	_, err := Read(bytes.NewReader(buf))
	assert.ErrorIs(t, err, binary.ErrChecksum)
}

func TestReadAfterUserBlock(t *testing.T) {
	file := make([]byte, 512)
	file = append(file, Encode(binary.DefaultSizes, 48, 4096)...)

	sb, err := Read(bytes.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, int64(512), sb.Location)
}

// encodeV0 builds a version 0 superblock the way the reference library lays
// it out, with a cached root symbol table in the scratch pad.
func encodeV0(btree, heap uint64) []byte {
	e := binary.NewEncoder(binary.DefaultSizes)
	e.Raw(Signature)
	e.U8(0) // superblock version
	e.U8(0) // free-space version
	e.U8(0) // root group symbol table version
	e.U8(0)
	e.U8(0) // shared header version
	e.U8(8) // offset size
	e.U8(8) // length size
	e.U8(0)
	e.U16(4)  // group leaf K
	e.U16(16) // group internal K
	e.U32(0)  // file consistency flags
	e.Offset(0)
	e.Offset(binary.Undefined)
	e.Offset(2048) // EOF
	e.Offset(binary.Undefined)
	e.Offset(0)  // link name offset
	e.Offset(96) // root object header
	e.U32(1)     // cache type: symbol table
	e.U32(0)
	e.Offset(btree)
	e.Offset(heap)
	return e.Bytes()
}

func TestReadV0(t *testing.T) {
	sb, err := Read(bytes.NewReader(encodeV0(136, 680)))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), sb.Version)
	assert.Equal(t, uint64(96), sb.Root)
	assert.Equal(t, uint64(2048), sb.EOF)
	assert.Equal(t, uint64(136), sb.RootBTree)
	assert.Equal(t, uint64(680), sb.RootHeap)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("definitely not an hdf5 file")))
	assert.ErrorIs(t, err, ErrSignature)

	buf := Encode(binary.DefaultSizes, 48, 4096)
	buf[8] = 9
	_, err = Read(bytes.NewReader(buf))
	assert.ErrorIs(t, err, ErrVersion)
}
