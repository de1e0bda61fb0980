package btree

import (
	"errors"
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

const (
	nodeGroup = 0
	nodeChunk = 1

	// maxDepth bounds recursion on corrupt files.
	maxDepth = 32
)

var (
	// ErrSignature is returned when a node does not start with the expected magic.
	ErrSignature = errors.New("btree: bad signature")

	// ErrNodeType is returned when a tree of the wrong type is found.
	ErrNodeType = errors.New("btree: unexpected node type")
)

var treeMagic = [4]byte{'T', 'R', 'E', 'E'}

type node struct {
	level    int
	keys     [][]byte
	children []uint64
}

func nodeHeaderSize(sizes binary.Sizes) int { return 8 + 2*sizes.Offset }

// readNode decodes the node at addr. Keys and children interleave, with one
// more key than children.
func readNode(r io.ReaderAt, addr uint64, sizes binary.Sizes, typ uint8, keySize int) (*node, error) {
	head, err := binary.ReadAt(r, addr, nodeHeaderSize(sizes))
	if err != nil {
		return nil, fmt.Errorf("btree node at %#x: %w", addr, err)
	}
	if [4]byte(head[:4]) != treeMagic {
		return nil, fmt.Errorf("%w at %#x: %q", ErrSignature, addr, head[:4])
	}
	if head[4] != typ {
		return nil, fmt.Errorf("%w at %#x: got %d, want %d", ErrNodeType, addr, head[4], typ)
	}
	n := &node{level: int(head[5])}
	used := int(binary.Order.Uint16(head[6:8]))

	body, err := binary.ReadAt(r, addr+uint64(len(head)), (used+1)*keySize+used*sizes.Offset)
	if err != nil {
		return nil, fmt.Errorf("btree node at %#x: %w", addr, err)
	}
	d := binary.NewDecoder(body, sizes)
	for i := 0; i < used; i++ {
		n.keys = append(n.keys, d.Bytes(keySize))
		n.children = append(n.children, d.Offset())
	}
	n.keys = append(n.keys, d.Bytes(keySize))
	if err := d.Err(); err != nil {
		return nil, err
	}
	return n, nil
}
