package filter

import (
	"bytes"
	"math/bits"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

func ramp(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i / 7)
	}
	return out
}

func noise(n int) []byte {
	out := make([]byte, n)
	x := uint32(2463534242)
	for i := range out {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		out[i] = byte(x)
	}
	return out
}

func TestDeflateRoundTrip(t *testing.T) {
	f := NewDeflate([]uint32{6})
	assert.Equal(t, 6, f.Level)

	in := ramp(4096)
	enc, err := f.Encode(in)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(in))

	out, err := f.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDeflateReadsForeignStream(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write([]byte("hello hdf5 hello hdf5"))
	require.NoError(t, w.Close())

	out, err := NewDeflate(nil).Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "hello hdf5 hello hdf5", string(out))
}

func TestDeflateCorrupt(t *testing.T) {
	_, err := NewDeflate(nil).Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestShuffle(t *testing.T) {
	in := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
		0x21, 0x22, 0x23, 0x24,
		0xAA, 0xBB, // trailing partial element
	}
	want := []byte{
		0x01, 0x11, 0x21,
		0x02, 0x12, 0x22,
		0x03, 0x13, 0x23,
		0x04, 0x14, 0x24,
		0xAA, 0xBB,
	}
	f := NewShuffle(nil, 4)
	enc, err := f.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, want, enc)

	dec, err := f.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, in, dec)
}

func TestShuffleClientDataWins(t *testing.T) {
	assert.Equal(t, 2, NewShuffle([]uint32{2}, 8).ElemSize)
	assert.Equal(t, 1, NewShuffle(nil, 0).ElemSize)
}

func TestFletcher32(t *testing.T) {
	in := []byte("abcde")
	enc, err := Fletcher32{}.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4ff029c7), binary.Order.Uint32(enc[5:]))

	dec, err := Fletcher32{}.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, in, dec)

	swapped := append([]byte("abcde"), 0, 0, 0, 0)
	binary.Order.PutUint32(swapped[5:], bits.ReverseBytes32(0x4ff029c7))
	_, err = Fletcher32{}.Decode(swapped)
	assert.NoError(t, err)

	enc[0] ^= 0xff
	_, err = Fletcher32{}.Decode(enc)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLZFRoundTrip(t *testing.T) {
	for _, in := range [][]byte{
		ramp(10000),
		bytes.Repeat([]byte("abc"), 500),
		make([]byte, 70000),
		append(ramp(300), noise(300)...),
	} {
		f := NewLZF(LZFClientData(len(in)))
		enc, err := f.Encode(in)
		require.NoError(t, err)
		assert.Less(t, len(enc), len(in))

		dec, err := f.Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, in, dec)
	}
}

func TestLZFIncompressible(t *testing.T) {
	for _, in := range [][]byte{noise(512), {1, 2, 3}, nil} {
		_, err := NewLZF(nil).Encode(in)
		assert.ErrorIs(t, err, ErrIncompressible, "%d bytes", len(in))
	}
}

func TestLZFDecodesReferenceStream(t *testing.T) {
	// literal "ab" then a back reference of length 4 at distance 2
	in := []byte{0x01, 'a', 'b', 0x40, 0x01}
	out, err := NewLZF(nil).Decode(in)
	require.NoError(t, err)
	assert.Equal(t, "ababab", string(out))

	out, err = NewLZF(LZFClientData(6)).Decode(in)
	require.NoError(t, err)
	assert.Equal(t, "ababab", string(out))
	_, err = NewLZF(LZFClientData(4)).Decode(in)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = NewLZF(nil).Decode([]byte{0x40, 0x05})
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = NewLZF(nil).Decode([]byte{0x05, 'a'})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func pipelineMsg(infos ...message.FilterInfo) *message.Pipeline {
	return &message.Pipeline{Filters: infos}
}

func TestPipelineOrder(t *testing.T) {
	p, err := NewPipeline(pipelineMsg(
		message.FilterInfo{ID: IDShuffle, Flags: message.FilterOptional, Values: []uint32{4}},
		message.FilterInfo{ID: IDDeflate, Flags: message.FilterOptional, Values: []uint32{4}},
		message.FilterInfo{ID: IDFletcher32},
	), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"shuffle", "deflate", "fletcher32"}, p.Names())

	in := ramp(8192)
	enc, mask, err := p.Encode(in)
	require.NoError(t, err)
	assert.Zero(t, mask)

	dec, err := p.Decode(enc, mask)
	require.NoError(t, err)
	assert.Equal(t, in, dec)
}

func TestPipelineOptionalFailureSetsMask(t *testing.T) {
	p, err := NewPipeline(pipelineMsg(
		message.FilterInfo{ID: IDLZF, Flags: message.FilterOptional, Values: LZFClientData(512)},
	), 1)
	require.NoError(t, err)

	in := noise(512)
	enc, mask, err := p.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), mask)
	assert.Equal(t, in, enc)

	dec, err := p.Decode(enc, mask)
	require.NoError(t, err)
	assert.Equal(t, in, dec)
}

func TestPipelineUnsupported(t *testing.T) {
	_, err := NewPipeline(pipelineMsg(message.FilterInfo{ID: IDSZIP}), 4)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorContains(t, err, "szip")

	p, err := NewPipeline(pipelineMsg(message.FilterInfo{ID: 307, Flags: message.FilterOptional}), 4)
	require.NoError(t, err)

	out, err := p.Decode([]byte{1, 2}, 1)
	require.NoError(t, err, "masked optional filter is skipped")
	assert.Equal(t, []byte{1, 2}, out)

	_, err = p.Decode([]byte{1, 2}, 0)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEmptyPipeline(t *testing.T) {
	p, err := NewPipeline(nil, 8)
	require.NoError(t, err)
	assert.True(t, p.Empty())
	out, mask, err := p.Encode([]byte{9})
	require.NoError(t, err)
	assert.Zero(t, mask)
	assert.Equal(t, []byte{9}, out)
}

func TestName(t *testing.T) {
	assert.Equal(t, "lzf", Name(IDLZF))
	assert.Equal(t, "filter-999", Name(999))
	assert.True(t, Supported(IDDeflate))
	assert.False(t, Supported(IDSZIP))
}
