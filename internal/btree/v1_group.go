package btree

import (
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Cache types of a symbol table entry.
const (
	CacheNone     = 0
	CacheGroup    = 1
	CacheSoftLink = 2
)

var snodMagic = [4]byte{'S', 'N', 'O', 'D'}

// GroupEntry is one symbol table entry of an old-style group.
type GroupEntry struct {
	NameOffset uint64
	Address    uint64
	CacheType  uint32
	Scratch    [16]byte
}

// SoftLinkOffset returns the local heap offset of a soft link's target path.
func (e GroupEntry) SoftLinkOffset() (uint64, bool) {
	if e.CacheType != CacheSoftLink {
		return 0, false
	}
	return uint64(binary.Order.Uint32(e.Scratch[:4])), true
}

// WalkGroup visits every entry of the group B-tree rooted at addr in key
// order. Returning an error from fn stops the walk.
func WalkGroup(r io.ReaderAt, addr uint64, sizes binary.Sizes, fn func(GroupEntry) error) error {
	return walkGroup(r, addr, sizes, fn, 0)
}

func walkGroup(r io.ReaderAt, addr uint64, sizes binary.Sizes, fn func(GroupEntry) error, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("btree: group tree deeper than %d", maxDepth)
	}
	n, err := readNode(r, addr, sizes, nodeGroup, sizes.Length)
	if err != nil {
		return err
	}
	for _, child := range n.children {
		if n.level > 0 {
			err = walkGroup(r, child, sizes, fn, depth+1)
		} else {
			err = readSymbolNode(r, child, sizes, fn)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func entrySize(sizes binary.Sizes) int { return 2*sizes.Offset + 24 }

func readSymbolNode(r io.ReaderAt, addr uint64, sizes binary.Sizes, fn func(GroupEntry) error) error {
	head, err := binary.ReadAt(r, addr, 8)
	if err != nil {
		return fmt.Errorf("symbol node at %#x: %w", addr, err)
	}
	if [4]byte(head[:4]) != snodMagic {
		return fmt.Errorf("%w: symbol node at %#x: %q", ErrSignature, addr, head[:4])
	}
	if head[4] != 1 {
		return fmt.Errorf("btree: symbol node version %d", head[4])
	}
	count := int(binary.Order.Uint16(head[6:8]))
	body, err := binary.ReadAt(r, addr+8, count*entrySize(sizes))
	if err != nil {
		return fmt.Errorf("symbol node at %#x: %w", addr, err)
	}
	d := binary.NewDecoder(body, sizes)
	for i := 0; i < count; i++ {
		var e GroupEntry
		e.NameOffset = d.Offset()
		e.Address = d.Offset()
		e.CacheType = d.U32()
		d.Skip(4)
		copy(e.Scratch[:], d.Bytes(16))
		if err := d.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// EncodeSymbolNode builds a symbol table node holding entries. It is used by
// tests to construct old-style groups.
func EncodeSymbolNode(entries []GroupEntry, sizes binary.Sizes) []byte {
	e := binary.NewEncoder(sizes)
	e.Raw(snodMagic[:])
	e.U8(1)
	e.U8(0)
	e.U16(uint16(len(entries)))
	for _, ent := range entries {
		e.Offset(ent.NameOffset)
		e.Offset(ent.Address)
		e.U32(ent.CacheType)
		e.U32(0)
		e.Raw(ent.Scratch[:])
	}
	return e.Bytes()
}

// EncodeGroupLeaf builds a level-0 group node pointing at symbol nodes.
// Keys are heap offsets; the first is always zero.
func EncodeGroupLeaf(symbolNodes []uint64, keys []uint64, sizes binary.Sizes) []byte {
	e := binary.NewEncoder(sizes)
	e.Raw(treeMagic[:])
	e.U8(nodeGroup)
	e.U8(0)
	e.U16(uint16(len(symbolNodes)))
	e.Offset(binary.Undefined)
	e.Offset(binary.Undefined)
	for i, addr := range symbolNodes {
		e.Length(keys[i])
		e.Offset(addr)
	}
	e.Length(keys[len(keys)-1])
	return e.Bytes()
}
