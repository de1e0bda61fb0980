// Package alloc hands out file space while an HDF5 file is being written.
//
// Every structure the writer emits (object headers, heaps, B-tree nodes and
// chunk payloads) is placed at the current end of file, which then advances.
// Space is never reused. The [Allocator] remembers each block it handed out
// so a finished file can be checked for overlapping writes with
// [Allocator.Validate].
//
//	a := alloc.New(w, superblock.Size(sizes))
//	addr, err := a.Append(headerBytes, "root header")
package alloc
