// Package hdf5 reads and writes HDF5 files in pure Go.
//
// Reading covers what scientific Python stacks produce: superblocks 0-3,
// both object header versions, old-style (symbol table) and new-style
// (link message) groups, soft links, attributes, and datasets stored
// compact, contiguous or chunked with deflate, shuffle, fletcher32 or LZF.
//
// Writing produces files h5py opens: a version 2 superblock, version 2
// object headers, compact link storage, and chunked datasets indexed by
// version 1 B-trees.
//
//	f, err := hdf5.Create("out.h5")
//	g, err := f.Root().CreateGroup("4dstem_data")
//	_, err = g.CreateDataset("datacube", data, []uint64{4, 4, 8, 8},
//	    hdf5.WithChunks(2, 2, 8, 8), hdf5.WithShuffle(), hdf5.WithCompression(4))
//	err = f.Close()
package hdf5

import "errors"

var (
	ErrNotHDF5     = errors.New("hdf5: not an HDF5 file")
	ErrNotFound    = errors.New("hdf5: object not found")
	ErrNotDataset  = errors.New("hdf5: object is not a dataset")
	ErrNotGroup    = errors.New("hdf5: object is not a group")
	ErrUnsupported = errors.New("hdf5: unsupported feature")
	ErrInvalidPath = errors.New("hdf5: invalid path")
	ErrClosed      = errors.New("hdf5: file is closed")
	ErrLinkDepth   = errors.New("hdf5: too many soft links")
	ErrExists      = errors.New("hdf5: name already exists")
	ErrShape       = errors.New("hdf5: data does not match shape")
	ErrReadOnly    = errors.New("hdf5: file is open for reading")
	ErrWriteOnly   = errors.New("hdf5: file is open for writing")
)

// MaxLinkDepth bounds soft link resolution within one path lookup.
const MaxLinkDepth = 40
