// Package heap reads HDF5 local heaps and reads and writes global heap
// collections.
//
// Local heaps hold the link names of old-style (symbol table) groups. Global
// heap collections hold variable-length data; this module uses them for
// variable-length string attributes, addressed by a collection address plus
// a one-based object index.
package heap
