package stem

import (
	"errors"
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

// Datacube locations tried in order before scanning the root group.
var datacubePaths = []string{"4dstem_data/datacube", "datacube"}

// metadataGroup is the reserved group whose attributes become Metadata.
const metadataGroup = "metadata"

// HDF5Reader reads .h5 and .hdf5 files. It is registered by NewLoader.
type HDF5Reader struct{}

// Read loads the datacube and metadata into memory.
func (HDF5Reader) Read(path string) (*Record, error) {
	return readHDF5(path, false)
}

// ReadLazy returns a record whose Data reads the datacube chunk by chunk.
func (HDF5Reader) ReadLazy(path string) (*Record, error) {
	return readHDF5(path, true)
}

func readHDF5(path string, lazy bool) (_ *Record, err error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	ds, err := findDatacube(f)
	if err != nil {
		return nil, err
	}
	dt, err := fromKind(ds.Kind())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path(), err)
	}
	shape := shapeFrom(ds.Shape())

	rec := &Record{}
	if lazy {
		rec.Data = &hdf5Cube{path: path, dataset: ds.Path(), shape: shape, dtype: dt}
	} else {
		data, err := ds.Read()
		if err != nil {
			return nil, err
		}
		if rec.Data, err = NewArray(data, shape...); err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Path(), err)
		}
	}
	if rec.Metadata, err = readMetadata(f); err != nil {
		return nil, err
	}
	rec.Calibration = calibrationFrom(rec.Metadata)
	return rec, nil
}

// findDatacube returns the first rank-4 dataset at a known location, else
// the first rank-4 top-level dataset by name.
func findDatacube(f *hdf5.File) (*hdf5.Dataset, error) {
	for _, p := range datacubePaths {
		ds, err := f.OpenDataset(p)
		switch {
		case err == nil:
			if ds.Rank() == 4 {
				return ds, nil
			}
		case errors.Is(err, hdf5.ErrNotFound), errors.Is(err, hdf5.ErrNotDataset), errors.Is(err, hdf5.ErrNotGroup):
		default:
			return nil, err
		}
	}

	names, err := f.Root().Members()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		ds, err := f.Root().OpenDataset(name)
		if err != nil {
			continue
		}
		if ds.Rank() == 4 {
			return ds, nil
		}
	}
	return nil, ErrNoDatacube
}

// readMetadata collects the attributes of the metadata group, plus any
// datasets stored inside it. A file without the group has empty metadata.
func readMetadata(f *hdf5.File) (Metadata, error) {
	m := Metadata{}
	g, err := f.OpenGroup(metadataGroup)
	if errors.Is(err, hdf5.ErrNotFound) || errors.Is(err, hdf5.ErrNotGroup) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}

	names, err := g.Attrs()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		a, err := g.Attr(name)
		if err != nil {
			return nil, err
		}
		v, err := a.Value()
		if err != nil {
			return nil, err
		}
		m[name] = metadataValue(v, shapeFrom(a.Shape()))
	}

	members, err := g.Members()
	if err != nil {
		return nil, err
	}
	for _, name := range members {
		ds, err := g.OpenDataset(name)
		if errors.Is(err, hdf5.ErrNotDataset) || errors.Is(err, hdf5.ErrUnsupported) {
			continue
		}
		if err != nil {
			return nil, err
		}
		v, err := ds.Read()
		if errors.Is(err, hdf5.ErrUnsupported) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m[name] = metadataValue(v, shapeFrom(ds.Shape()))
	}
	return m, nil
}

// metadataValue wraps numeric slices in an Array and leaves scalars and
// strings alone.
func metadataValue(v any, shape Shape) any {
	if _, err := dtypeOf(v); err != nil {
		return v
	}
	if len(shape) == 0 {
		shape = Shape{sliceLen(v)}
	}
	a, err := NewArray(v, shape...)
	if err != nil {
		return v
	}
	return a
}
