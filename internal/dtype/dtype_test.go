package dtype

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

func TestOf(t *testing.T) {
	tests := []struct {
		dt   *message.Datatype
		want Kind
	}{
		{message.Int(1, true), Int8},
		{message.Int(2, false), Uint16},
		{message.Int(4, true), Int32},
		{message.Int(8, false), Uint64},
		{message.Float(4), Float32},
		{message.Float(8), Float64},
		{message.Bool(), Bool},
		{message.FixedString(12, message.CharsetASCII), String},
		{message.VarLenString(binary.DefaultSizes), String},
		{&message.Datatype{Class: message.ClassEnum, Size: 2, Base: message.Int(2, false),
			Members: []message.EnumMember{{Name: "A", Value: []byte{0, 0}}}}, Uint16},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := Of(tt.dt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Of(&message.Datatype{Class: message.ClassCompound, Size: 16})
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Of(message.Float(2))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestKindProperties(t *testing.T) {
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, 8, Uint64.Size())
	assert.True(t, Float64.Numeric())
	assert.False(t, Bool.Numeric())
	assert.True(t, Int16.Signed())
	assert.False(t, Uint8.Signed())
	assert.True(t, Uint32.Integer())
	assert.False(t, Float32.Integer())
}

func TestKindDatatypeRoundTrip(t *testing.T) {
	for k := Int8; k <= String; k++ {
		dt, err := k.Datatype(binary.DefaultSizes)
		require.NoError(t, err)
		got, err := Of(dt)
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := Invalid.Datatype(binary.DefaultSizes)
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	values := []any{
		[]int8{-1, 0, 127},
		[]int16{-300, 2},
		[]int32{math.MinInt32, 5},
		[]int64{-1 << 40, 1},
		[]uint8{0, 255},
		[]uint16{65535},
		[]uint32{1 << 31},
		[]uint64{math.MaxUint64},
		[]float32{1.5, float32(math.Inf(-1))},
		[]float64{math.Pi, -0.25},
		[]bool{true, false, true},
	}
	for _, v := range values {
		raw, k, err := Encode(v)
		require.NoError(t, err)
		dt, err := k.Datatype(binary.DefaultSizes)
		require.NoError(t, err)

		got, err := Decode(dt, raw, Len(v), binary.DefaultSizes, nil)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDecodeBigEndian(t *testing.T) {
	dt := message.Int(4, true)
	dt.BigEndian = true
	got, err := Decode(dt, []byte{0xff, 0xff, 0xff, 0xfe, 0, 0, 1, 0}, 2, binary.DefaultSizes, nil)
	require.NoError(t, err)
	assert.Equal(t, []int32{-2, 256}, got)

	ft := message.Float(8)
	ft.BigEndian = true
	got, err = Decode(ft, []byte{0x3f, 0xf0, 0, 0, 0, 0, 0, 0}, 1, binary.DefaultSizes, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, got)
}

func TestDecodeFixedStrings(t *testing.T) {
	dt := message.FixedString(4, message.CharsetASCII)
	got, err := Decode(dt, []byte("ab\x00\x00abcd"), 2, binary.DefaultSizes, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "abcd"}, got)

	dt.Padding = message.PadSpacePad
	got, err = Decode(dt, []byte("x   "), 1, binary.DefaultSizes, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}

func TestDecodeVarLenStrings(t *testing.T) {
	sizes := binary.DefaultSizes
	heap := map[uint32][]byte{1: []byte("float32"), 2: []byte("hi")}
	var raw []byte
	raw = AppendVarLen(raw, sizes, 7, 0x400, 1)
	raw = AppendVarLen(raw, sizes, 0, 0, 0)
	raw = AppendVarLen(raw, sizes, 2, 0x400, 2)

	resolve := func(addr uint64, index uint32) ([]byte, error) {
		if addr != 0x400 {
			return nil, errors.New("wrong collection")
		}
		return heap[index], nil
	}
	got, err := Decode(message.VarLenString(sizes), raw, 3, sizes, resolve)
	require.NoError(t, err)
	assert.Equal(t, []string{"float32", "", "hi"}, got)

	_, err = Decode(message.VarLenString(sizes), raw, 3, sizes, nil)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := Decode(message.Float(8), make([]byte, 7), 1, binary.DefaultSizes, nil)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	s, scalar, err := Normalize(3)
	require.NoError(t, err)
	assert.True(t, scalar)
	assert.Equal(t, []int64{3}, s)

	s, scalar, err = Normalize([]int{1, 2})
	require.NoError(t, err)
	assert.False(t, scalar)
	assert.Equal(t, []int64{1, 2}, s)

	s, _, err = Normalize("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, s)

	_, _, err = Normalize(map[string]int{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeRejectsStrings(t *testing.T) {
	_, _, err := Encode([]string{"a"})
	assert.ErrorIs(t, err, ErrUnsupported)
}
