package binary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderDecoderRoundTrip(t *testing.T) {
	for _, sizes := range []Sizes{{2, 2}, {4, 4}, {8, 8}, {4, 8}} {
		e := NewEncoder(sizes)
		e.U8(7)
		e.U16(0x1234)
		e.U32(0xdeadbeef)
		e.U64(1 << 40)
		e.Offset(0x0102)
		e.Length(99)
		e.Offset(Undefined)
		e.Raw([]byte("name\x00"))
		e.Pad(8)

		d := NewDecoder(e.Bytes(), sizes)
		assert.Equal(t, uint8(7), d.U8())
		assert.Equal(t, uint16(0x1234), d.U16())
		assert.Equal(t, uint32(0xdeadbeef), d.U32())
		assert.Equal(t, uint64(1<<40), d.U64())
		assert.Equal(t, uint64(0x0102), d.Offset())
		assert.Equal(t, uint64(99), d.Length())
		assert.Equal(t, Undefined, d.Offset(), "undefined address widens for %+v", sizes)
		assert.Equal(t, "name", d.CString())
		d.Align(8)
		require.NoError(t, d.Err())
		assert.Zero(t, d.Len())
	}
}

func TestDecoderStickyError(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3}, DefaultSizes)
	assert.Equal(t, uint16(0x0201), d.U16())
	assert.Zero(t, d.U32())
	assert.Zero(t, d.U8(), "reads after a failure return zero")
	assert.ErrorIs(t, d.Err(), ErrShortBuffer)
}

func TestDecoderUnterminatedString(t *testing.T) {
	d := NewDecoder([]byte("abc"), DefaultSizes)
	assert.Empty(t, d.CString())
	assert.ErrorIs(t, d.Err(), ErrShortBuffer)
}

func TestSizesValidate(t *testing.T) {
	assert.NoError(t, DefaultSizes.Validate())
	assert.ErrorIs(t, Sizes{Offset: 3, Length: 8}.Validate(), ErrInvalidSize)
	assert.True(t, Sizes{Offset: 4}.IsUndefined(0xffffffff))
	assert.False(t, Sizes{Offset: 4}.IsUndefined(0xfffffffe))
}

func TestReadAt(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))

	b, err := ReadAt(r, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "234", string(b))

	_, err = ReadAt(r, 8, 4)
	assert.ErrorIs(t, err, ErrShortBuffer)

	b, err = ReadAtMost(r, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, "89", string(b))
}
