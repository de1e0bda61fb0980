package hdf5

import "github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/dtype"

// Kind is the Go element type a dataset or attribute decodes to. Its String
// method returns the numpy name.
type Kind = dtype.Kind

const (
	Invalid = dtype.Invalid
	Int8    = dtype.Int8
	Int16   = dtype.Int16
	Int32   = dtype.Int32
	Int64   = dtype.Int64
	Uint8   = dtype.Uint8
	Uint16  = dtype.Uint16
	Uint32  = dtype.Uint32
	Uint64  = dtype.Uint64
	Float32 = dtype.Float32
	Float64 = dtype.Float64
	Bool    = dtype.Bool
	String  = dtype.String
)
