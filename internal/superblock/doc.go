// Package superblock locates and decodes the HDF5 superblock, and encodes the
// version 2 superblock written by this module.
//
// The superblock is found by searching for the signature
// 0x89 'H' 'D' 'F' '\r' '\n' 0x1a '\n' at byte 0 and then at every power of
// two from 512 up to the end of the file.
//
// Versions 0 and 1 describe the root group through a symbol table entry whose
// scratch pad may cache the root B-tree and local heap addresses. Versions 2
// and 3 store the root object header address directly and end with a lookup3
// checksum.
package superblock
