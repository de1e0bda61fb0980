// Package dtype maps HDF5 datatypes onto Go slice types.
//
// Every dataset or attribute value this module reads becomes one of a fixed
// set of typed slices, named by a [Kind]:
//
//	HDF5 class              | Go type
//	------------------------|-------------------------------------
//	integer, 1-8 bytes      | []int8 ... []int64, []uint8 ... []uint64
//	float, 4 or 8 bytes     | []float32, []float64
//	enum FALSE/TRUE on int8 | []bool (the h5py convention)
//	other enums             | slice of the base integer type
//	fixed or vlen string    | []string
//
// [Decode] converts raw element bytes into such a slice, handling either byte
// order and resolving variable-length strings through a callback. [Encode]
// goes the other way for the types the writer emits.
package dtype
