// Package virtual computes virtual detector images and diffraction pattern
// reductions from 4D-STEM data.
//
// Detector axis 0 (detector_x) is the matrix row and axis 1 (detector_y)
// the column; scan axes map the same way onto image rows and columns.
// Every reduction streams the cube one scan row at a time through
// stem.Cube.Slice, so lazy cubes never need to fit in memory.
package virtual

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/stem"
)

// Point is a (row, col) position on the detector or in the scan.
type Point struct {
	Row, Col int
}

// Geometry places the default bright field disk and dark field annulus.
type Geometry struct {
	Center Point
	Radius int
	// Annulus bounds, 1.5 and 3 times Radius.
	Inner, Outer float64
}

// DefaultGeometry centres the detectors on det and sizes the disk to an
// eighth of the smaller detector dimension.
func DefaultGeometry(det stem.Shape) Geometry {
	r := min(det[0], det[1]) / 8
	return Geometry{
		Center: Point{det[0] / 2, det[1] / 2},
		Radius: r,
		Inner:  1.5 * float64(r),
		Outer:  3 * float64(r),
	}
}

func mask(rows, cols int, in func(d2 float64) bool, c Point) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dr, dc := float64(i-c.Row), float64(j-c.Col)
			if in(dr*dr + dc*dc) {
				m.Set(i, j, 1)
			}
		}
	}
	return m
}

// Disk returns a rows×cols mask that is 1 within r of center, boundary
// included, and 0 elsewhere.
func Disk(rows, cols int, center Point, r float64) *mat.Dense {
	return mask(rows, cols, func(d2 float64) bool { return d2 <= r*r }, center)
}

// Annulus returns a mask that is 1 where rin <= distance <= rout.
func Annulus(rows, cols int, center Point, rin, rout float64) *mat.Dense {
	return mask(rows, cols, func(d2 float64) bool { return d2 >= rin*rin && d2 <= rout*rout }, center)
}

// DetectorMap labels detector pixels 1 inside the default bright field disk,
// 2 inside the dark field annulus and 0 elsewhere. The annulus wins where
// the two overlap, which happens when the radius rounds down to 0.
func DetectorMap(det stem.Shape) *mat.Dense {
	g := DefaultGeometry(det)
	out := Disk(det[0], det[1], g.Center, float64(g.Radius))
	df := Annulus(det[0], det[1], g.Center, g.Inner, g.Outer)
	out.Apply(func(i, j int, v float64) float64 {
		if df.At(i, j) != 0 {
			return 2
		}
		return v
	}, out)
	return out
}

// DefaultPositions returns three scan positions along the diagonal, at a
// quarter, half and three quarters of the scan.
func DefaultPositions(scan stem.Shape) []Point {
	sx, sy := scan[0], scan[1]
	return []Point{
		{sx / 4, sy / 4},
		{sx / 2, sy / 2},
		{3 * sx / 4, 3 * sy / 4},
	}
}

func checkCube(c stem.Cube) (scan, det stem.Shape, err error) {
	s := c.Shape()
	if len(s) != 4 {
		return nil, nil, &stem.ShapeError{Shape: s, Err: stem.ErrRank}
	}
	if s.NumElements() == 0 {
		return nil, nil, &stem.ShapeError{Shape: s, Err: stem.ErrEmpty}
	}
	return s[:2], s[2:], nil
}

// eachFrame calls fn for every diffraction pattern in scan order, reading
// one scan row per Slice call. The frame slice is reused between calls.
func eachFrame(c stem.Cube, fn func(x, y int, frame []float64)) error {
	scan, det, err := checkCube(c)
	if err != nil {
		return err
	}
	size := det.NumElements()
	var buf []float64
	for x := 0; x < scan[0]; x++ {
		row, err := c.Slice([]int{x, 0, 0, 0}, []int{1, scan[1], det[0], det[1]})
		if err != nil {
			return fmt.Errorf("scan row %d: %w", x, err)
		}
		buf = append(buf[:0], row.Float64s()...)
		for y := 0; y < scan[1]; y++ {
			fn(x, y, buf[y*size:(y+1)*size])
		}
	}
	return nil
}

// Image returns the scan_x×scan_y image of frame sums weighted by m, which
// must match the detector shape.
func Image(c stem.Cube, m mat.Matrix) (*mat.Dense, error) {
	scan, det, err := checkCube(c)
	if err != nil {
		return nil, err
	}
	if r, cols := m.Dims(); r != det[0] || cols != det[1] {
		return nil, fmt.Errorf("mask is %dx%d, detector is %v", r, cols, det)
	}
	weights := mat.DenseCopyOf(m).RawMatrix().Data
	img := mat.NewDense(scan[0], scan[1], nil)
	err = eachFrame(c, func(x, y int, frame []float64) {
		img.Set(x, y, floats.Dot(frame, weights))
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// BrightField integrates the default bright field disk.
func BrightField(c stem.Cube) (*mat.Dense, error) {
	_, det, err := checkCube(c)
	if err != nil {
		return nil, err
	}
	g := DefaultGeometry(det)
	return Image(c, Disk(det[0], det[1], g.Center, float64(g.Radius)))
}

// DarkField integrates the default dark field annulus.
func DarkField(c stem.Cube) (*mat.Dense, error) {
	_, det, err := checkCube(c)
	if err != nil {
		return nil, err
	}
	g := DefaultGeometry(det)
	return Image(c, Annulus(det[0], det[1], g.Center, g.Inner, g.Outer))
}

// MeanPattern averages the diffraction patterns over the scan.
func MeanPattern(c stem.Cube) (*mat.Dense, error) {
	scan, det, err := checkCube(c)
	if err != nil {
		return nil, err
	}
	acc := make([]float64, det.NumElements())
	if err := eachFrame(c, func(_, _ int, frame []float64) { floats.Add(acc, frame) }); err != nil {
		return nil, err
	}
	floats.Scale(1/float64(scan.NumElements()), acc)
	return mat.NewDense(det[0], det[1], acc), nil
}

// MaxPattern takes the per-pixel maximum over the scan.
func MaxPattern(c stem.Cube) (*mat.Dense, error) {
	_, det, err := checkCube(c)
	if err != nil {
		return nil, err
	}
	acc := make([]float64, det.NumElements())
	for i := range acc {
		acc[i] = math.Inf(-1)
	}
	err = eachFrame(c, func(_, _ int, frame []float64) {
		for i, v := range frame {
			if v > acc[i] || math.IsNaN(v) {
				acc[i] = v
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return mat.NewDense(det[0], det[1], acc), nil
}

// Pattern returns the diffraction pattern at scan position (x, y).
func Pattern(c stem.Cube, x, y int) (*mat.Dense, error) {
	_, det, err := checkCube(c)
	if err != nil {
		return nil, err
	}
	f, err := c.Slice([]int{x, y, 0, 0}, []int{1, 1, det[0], det[1]})
	if err != nil {
		return nil, err
	}
	return mat.NewDense(det[0], det[1], f.Float64s()), nil
}
