package virtual

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/stem"
)

// scanCube returns a (3, 4, 8, 8) float64 cube whose frame at (x, y) is
// filled with 10*x + y.
func scanCube(t *testing.T) *stem.Array {
	t.Helper()
	data := make([]float64, 3*4*8*8)
	for i := range data {
		frame := i / 64
		data[i] = float64(10*(frame/4) + frame%4)
	}
	a, err := stem.NewArray(data, 3, 4, 8, 8)
	require.NoError(t, err)
	return a
}

func TestDefaultGeometry(t *testing.T) {
	g := DefaultGeometry(stem.Shape{8, 8})
	assert.Equal(t, Point{4, 4}, g.Center)
	assert.Equal(t, 1, g.Radius)
	assert.Equal(t, 1.5, g.Inner)
	assert.Equal(t, 3.0, g.Outer)

	g = DefaultGeometry(stem.Shape{256, 128})
	assert.Equal(t, Point{128, 64}, g.Center)
	assert.Equal(t, 16, g.Radius)
}

func TestMasks(t *testing.T) {
	c := Point{4, 4}
	disk := Disk(8, 8, c, 1)
	assert.Equal(t, 5.0, mat.Sum(disk))
	assert.Equal(t, 1.0, disk.At(3, 4))
	assert.Equal(t, 0.0, disk.At(3, 3))

	ring := Annulus(8, 8, c, 1.5, 3)
	assert.Equal(t, 20.0, mat.Sum(ring))
	assert.Equal(t, 1.0, ring.At(1, 4), "outer boundary is inclusive")
	assert.Equal(t, 0.0, ring.At(4, 4))

	m := DetectorMap(stem.Shape{8, 8})
	var want mat.Dense
	want.Scale(2, ring)
	want.Add(&want, disk)
	assert.True(t, mat.Equal(&want, m))
	counts := map[float64]int{}
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			counts[m.At(i, j)]++
		}
	}
	assert.Equal(t, map[float64]int{0: 39, 1: 5, 2: 20}, counts)
}

func TestDetectorMapOverlap(t *testing.T) {
	// Radius 0: disk and annulus both hold only the centre pixel.
	m := DetectorMap(stem.Shape{4, 4})
	assert.Equal(t, 2.0, m.At(2, 2))
	assert.Equal(t, 2.0, mat.Sum(m))
}

func TestNonSquareDetector(t *testing.T) {
	det := stem.Shape{16, 32}
	g := DefaultGeometry(det)
	assert.Equal(t, Point{Row: 8, Col: 16}, g.Center)
	assert.Equal(t, 2, g.Radius)

	// detector_x is the row axis: the disk sits at (det_x/2, det_y/2), not
	// at its transpose.
	m := DetectorMap(det)
	assert.Equal(t, 1.0, m.At(8, 16))
	assert.Equal(t, 1.0, m.At(10, 16))
	assert.Equal(t, 0.0, m.At(16, 8))

	data := make([]float64, 1*1*16*32)
	data[8*32+16] = 1
	cube, err := stem.NewArray(data, 1, 1, 16, 32)
	require.NoError(t, err)
	bf, err := BrightField(cube)
	require.NoError(t, err)
	assert.Equal(t, 1.0, bf.At(0, 0))
}

func TestDefaultPositions(t *testing.T) {
	assert.Equal(t, []Point{{2, 3}, {4, 6}, {6, 9}}, DefaultPositions(stem.Shape{8, 12}))
}

func TestImages(t *testing.T) {
	cube := scanCube(t)

	bf, err := BrightField(cube)
	require.NoError(t, err)
	df, err := DarkField(cube)
	require.NoError(t, err)
	r, c := bf.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	for x := 0; x < 3; x++ {
		for y := 0; y < 4; y++ {
			v := float64(10*x + y)
			assert.Equal(t, 5*v, bf.At(x, y))
			assert.Equal(t, 20*v, df.At(x, y))
		}
	}

	_, err = Image(cube, mat.NewDense(4, 4, nil))
	assert.Error(t, err)
}

func TestPatterns(t *testing.T) {
	cube := scanCube(t)

	mean, err := MeanPattern(cube)
	require.NoError(t, err)
	// mean of 10x+y over x<3, y<4
	assert.InDelta(t, 11.5, mean.At(0, 0), 1e-12)
	assert.InDelta(t, 11.5, mean.At(7, 7), 1e-12)

	peak, err := MaxPattern(cube)
	require.NoError(t, err)
	assert.Equal(t, 23.0, peak.At(3, 5))

	p, err := Pattern(cube, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 21.0, p.At(0, 0))
	_, err = Pattern(cube, 3, 0)
	assert.Error(t, err)
}

func TestMaxPatternNaN(t *testing.T) {
	data := make([]float32, 2*2*2*2)
	data[5] = float32(math.NaN())
	cube, err := stem.NewArray(data, 2, 2, 2, 2)
	require.NoError(t, err)
	m, err := MaxPattern(cube)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.At(0, 1)))
	assert.Equal(t, 0.0, m.At(0, 0))
}

func TestLazyCube(t *testing.T) {
	cube := scanCube(t)
	p := filepath.Join(t.TempDir(), "scan.h5")
	require.NoError(t, stem.Save(cube, p, stem.WithChunks(1, 2, 8, 8)))
	rec, err := stem.Load(p, stem.WithLazy())
	require.NoError(t, err)

	want, err := BrightField(cube)
	require.NoError(t, err)
	got, err := BrightField(rec.Data)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}

func TestRejectsBadCubes(t *testing.T) {
	flat, err := stem.NewArray([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	_, err = BrightField(flat)
	assert.ErrorIs(t, err, stem.ErrRank)
	_, err = MeanPattern(flat)
	assert.ErrorIs(t, err, stem.ErrRank)
}
