package superblock

import "github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"

// Size returns the encoded length of the superblock Encode produces.
func Size(s binary.Sizes) int { return size(s) }

// Encode returns a version 2 superblock for a file whose root object header
// is at root and whose logical end is eof. The base address is zero and no
// superblock extension is written.
func Encode(s binary.Sizes, root, eof uint64) []byte {
	e := binary.NewEncoder(s)
	e.Raw(Signature)
	e.U8(2)
	e.U8(uint8(s.Offset))
	e.U8(uint8(s.Length))
	e.U8(0) // file consistency flags
	e.Offset(0)
	e.Offset(binary.Undefined)
	e.Offset(eof)
	e.Offset(root)
	e.AppendChecksum()
	return e.Bytes()
}
