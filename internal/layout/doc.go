// Package layout reads and writes the raw storage behind HDF5 datasets.
//
// A dataset's bytes live in one of three places, named by its layout message:
//
//   - Compact: inside the object header itself ([Compact]).
//   - Contiguous: one block of the file in row-major order ([Contiguous]).
//   - Chunked: a grid of equally shaped chunks, each stored and filtered on
//     its own and found through a chunk index ([Chunked]). Version 1
//     B-trees, single-chunk, implicit and fixed array indexes are read.
//
// Every [Layout] answers hyperslab requests: ReadSlice(start, count)
// returns the selected elements in row-major order, touching only the
// chunks that overlap the selection. Elements with no storage behind them
// read as the dataset's fill value, or zeros when none is defined.
//
// [WriteContiguous] and [WriteChunked] store an in-memory row-major buffer
// and return the layout message describing it.
package layout
