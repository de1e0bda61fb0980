// Package btree reads and writes version 1 HDF5 B-trees ("TREE" nodes).
//
// Two node types exist. Type 0 trees index the members of an old-style
// group: their leaves point at symbol table nodes ("SNOD") whose entries
// carry the member's object header address and a name offset into the
// group's local heap. Type 1 trees index the chunks of a chunked dataset:
// each key holds a chunk's size, filter mask and logical offset.
//
// [WalkGroup] and [ReadChunks] decode existing trees. [WriteChunks] builds a
// chunk tree for the writer, splitting it into as many levels as needed.
package btree
