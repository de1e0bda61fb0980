package stem

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

func float64Cube(t *testing.T) *Array {
	t.Helper()
	data := make([]float64, 4*4*8*8)
	for i := range data {
		data[i] = math.Sin(float64(i)) * 1e3
	}
	a, err := NewArray(data, 4, 4, 8, 8)
	require.NoError(t, err)
	return a
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cubes := map[string]*Array{
		"float32": ramp(t, 4, 4, 8, 8),
		"float64": float64Cube(t),
	}
	for name, cube := range cubes {
		for _, c := range []Compression{CompressionGzip, CompressionLZF, CompressionNone} {
			t.Run(name+"/"+c.String(), func(t *testing.T) {
				p := filepath.Join(t.TempDir(), "cube.h5")
				require.NoError(t, Save(cube, p, WithCompression(c)))

				rec, err := Load(p)
				require.NoError(t, err)
				assert.Equal(t, FormatHDF5, rec.Format)
				got, ok := rec.Data.(*Array)
				require.True(t, ok)
				assert.Equal(t, cube.DType(), got.DType())
				assert.Equal(t, cube.Shape(), got.Shape())
				assert.Equal(t, cube.Data(), got.Data())
				assert.Empty(t, rec.Metadata)
				assert.False(t, rec.Calibration.RealPixelSize.IsSome())
			})
		}
	}
}

func TestSaveLayout(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cube.h5")
	require.NoError(t, Save(ramp(t, 4, 4, 8, 8), p))

	f, err := hdf5.Open(p)
	require.NoError(t, err)
	defer f.Close()
	ds, err := f.OpenDataset("/4dstem_data/datacube")
	require.NoError(t, err)
	assert.Equal(t, "chunked", ds.LayoutClass())
	assert.Equal(t, []uint64{4, 4, 8, 8}, ds.ChunkShape())
	assert.Equal(t, []string{"shuffle", "deflate"}, ds.Filters())

	shape, err := f.ReadAttr("/4dstem_data/datacube@shape")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 4, 8, 8}, shape)
	dt, err := f.ReadAttr("/4dstem_data/datacube@dtype")
	require.NoError(t, err)
	assert.Equal(t, "float32", dt)

	_, err = f.OpenGroup("/metadata")
	assert.ErrorIs(t, err, hdf5.ErrNotFound)
}

func TestSaveOptions(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cube.h5")
	cube := ramp(t, 4, 4, 8, 8)
	require.NoError(t, Save(cube, p, WithCompression(CompressionLZF), WithChunks(2, 2, 8, 8)))

	f, err := hdf5.Open(p)
	require.NoError(t, err)
	defer f.Close()
	ds, err := f.OpenDataset("/4dstem_data/datacube")
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 2, 8, 8}, ds.ChunkShape())
	assert.Equal(t, []string{"shuffle", "lzf"}, ds.Filters())
}

func TestSaveMetadata(t *testing.T) {
	profile, err := NewArray([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	meta := Metadata{
		"operator":     "jdoe",
		"voltage_kV":   300.0,
		"frames":       16,
		"binned":       true,
		"R_pixel_size": 0.125,
		"Q_pixel_size": float32(0.5),
		"profile":      profile,
		"angles":       []int32{0, 90, 180},
		"ignored":      struct{ X int }{1},
		"also_ignored": []string{"a", "b"},
	}
	p := filepath.Join(t.TempDir(), "meta.h5")
	require.NoError(t, Save(ramp(t, 2, 2, 4, 4), p, WithMetadata(meta)))

	rec, err := Load(p)
	require.NoError(t, err)
	m := rec.Metadata
	assert.Equal(t, "jdoe", m["operator"])
	assert.Equal(t, 300.0, m["voltage_kV"])
	assert.Equal(t, int64(16), m["frames"])
	assert.Equal(t, true, m["binned"])
	assert.Equal(t, float32(0.5), m["Q_pixel_size"])
	assert.Equal(t, profile, m["profile"])
	angles, ok := m["angles"].(*Array)
	require.True(t, ok)
	assert.Equal(t, []int32{0, 90, 180}, angles.Data())
	assert.NotContains(t, m, "ignored")
	assert.NotContains(t, m, "also_ignored")

	assert.Equal(t, map[string]float64{"R_pixel_size": 0.125, "Q_pixel_size": 0.5}, rec.Calibration.Map())
}

func TestSaveRejects(t *testing.T) {
	dir := t.TempDir()
	cube := ramp(t, 2, 2, 2, 2)
	empty, err := Zeros(Float32, 2, 0, 2, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		data *Array
		opts []SaveOption
		want error
	}{
		{"nil", nil, nil, ErrNotArray},
		{"rank3", ramp(t, 2, 2, 2), nil, ErrRank},
		{"empty", empty, nil, ErrEmpty},
		{"szip", cube, []SaveOption{WithCompression(CompressionSZIP)}, ErrUnsupportedCompression},
		{"level", cube, []SaveOption{WithCompressionLevel(12)}, ErrUnsupportedCompression},
		{"chunk rank", cube, []SaveOption{WithChunks(2, 2)}, ErrShapeMismatch},
		{"chunk zero", cube, []SaveOption{WithChunks(2, 2, 0, 2)}, ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, tt.name+".h5")
			err := Save(tt.data, p, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
			_, statErr := os.Stat(p)
			assert.True(t, os.IsNotExist(statErr), "file must not be created")
		})
	}
}

func TestSaveTruncates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cube.h5")
	require.NoError(t, os.WriteFile(p, make([]byte, 1<<20), 0o644))
	cube := ramp(t, 2, 2, 2, 2)
	require.NoError(t, Save(cube, p, WithCompression(CompressionNone)))

	st, err := os.Stat(p)
	require.NoError(t, err)
	assert.Less(t, st.Size(), int64(1<<20))
	rec, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, cube.Data(), rec.Data.(*Array).Data())
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionGzip, CompressionLZF, CompressionSZIP, CompressionNone} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCompression("GZIP")
	require.NoError(t, err)
	assert.Equal(t, CompressionGzip, got)
	_, err = ParseCompression("blosc")
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}
