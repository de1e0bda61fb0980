package stem

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

// Cube is a 4D-STEM data source. *Array holds the data in memory; lazy
// records hold a Cube that reads from disk on each call.
type Cube interface {
	Shape() Shape
	DType() DType
	// Slice returns a copy of the box [start, start+count).
	Slice(start, count []int) (*Array, error)
	// Load materializes the whole cube.
	Load() (*Array, error)
}

// hdf5Cube reads a dataset on demand. Only the file and dataset paths are
// kept between calls; every read opens and closes the file.
type hdf5Cube struct {
	path    string
	dataset string
	shape   Shape
	dtype   DType
}

func (c *hdf5Cube) Shape() Shape { return c.shape.Clone() }

func (c *hdf5Cube) DType() DType { return c.dtype }

func (c *hdf5Cube) String() string {
	return fmt.Sprintf("%s:%s %v %s (lazy)", c.path, c.dataset, c.shape, c.dtype)
}

func (c *hdf5Cube) Slice(start, count []int) (*Array, error) {
	if err := checkBox(c.shape, start, count); err != nil {
		return nil, err
	}
	return c.read(Shape(start).uint64s(), Shape(count).uint64s(), Shape(count).Clone())
}

func (c *hdf5Cube) Load() (*Array, error) {
	return c.read(make([]uint64, len(c.shape)), c.shape.uint64s(), c.shape.Clone())
}

func (c *hdf5Cube) read(start, count []uint64, shape Shape) (_ *Array, err error) {
	f, err := hdf5.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	ds, err := f.OpenDataset(c.dataset)
	if err != nil {
		return nil, err
	}
	data, err := ds.ReadSlab(start, count)
	if err != nil {
		return nil, err
	}
	return NewArray(data, shape...)
}
