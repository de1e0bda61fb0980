package stem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

func skipIfNoTestdata(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join("..", "testdata", name)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		t.Skipf("%s not found. Run 'python3 testdata/generate.py' to create it.", name)
	}
	return p
}

func filtersOf(t *testing.T, path, dataset string) []string {
	t.Helper()
	f, err := hdf5.Open(path)
	require.NoError(t, err)
	defer f.Close()
	ds, err := f.OpenDataset(dataset)
	require.NoError(t, err)
	return ds.Filters()
}

func TestLoadH5pyGzip(t *testing.T) {
	p := skipIfNoTestdata(t, "h5py_gzip.h5")
	assert.Equal(t, []string{"shuffle", "deflate"}, filtersOf(t, p, "4dstem_data/datacube"))

	rec, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, FormatHDF5, rec.Format)
	assert.Equal(t, Shape{4, 4}, rec.ScanShape())
	assert.Equal(t, Shape{8, 8}, rec.DetectorShape())
	assert.Equal(t, Float32, rec.Data.DType())

	a, err := rec.Data.Load()
	require.NoError(t, err)
	got := a.Float64s()
	require.Len(t, got, 4*4*8*8)
	for i, v := range got {
		if v != float64(i) {
			t.Fatalf("element %d = %v", i, v)
		}
	}

	assert.Equal(t, "alice", rec.Metadata["operator"])
	assert.Equal(t, true, rec.Metadata["binned"])
	assert.Equal(t, 0.5, rec.Metadata["R_pixel_size"])
	assert.Equal(t, Some(0.5), rec.Calibration.RealPixelSize)
	assert.Equal(t, Some(0.01), rec.Calibration.ReciprocalPixelSize)

	tilt, ok := rec.Metadata["tilt"].(*Array)
	require.True(t, ok, "tilt is %T", rec.Metadata["tilt"])
	assert.Equal(t, []float64{1, 2}, tilt.Float64s())
}

func TestLoadH5pyLZF(t *testing.T) {
	p := skipIfNoTestdata(t, "h5py_lzf.h5")
	assert.Equal(t, []string{"lzf"}, filtersOf(t, p, "datacube"))

	rec, err := Load(p, WithLazy())
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 5, 6, 4}, rec.Data.Shape())
	assert.Equal(t, Uint16, rec.Data.DType())
	assert.Empty(t, rec.Metadata)

	frame, err := rec.Data.Slice([]int{2, 4, 0, 0}, []int{1, 1, 6, 4})
	require.NoError(t, err)
	base := (2*5 + 4) * 6 * 4
	for i, v := range frame.Float64s() {
		assert.Equal(t, float64((base+i)%1000), v, "element %d", i)
	}
}
