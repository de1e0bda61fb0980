package alloc

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ErrOverlap is returned by Validate when two blocks share bytes.
var ErrOverlap = errors.New("alloc: overlapping blocks")

// Block is a single region handed out by the allocator.
type Block struct {
	Addr uint64
	Size uint64
	Tag  string
}

// Allocator places blocks at the end of an io.WriterAt.
type Allocator struct {
	mu     sync.Mutex
	w      io.WriterAt
	base   uint64
	eof    uint64
	blocks []Block
}

// New returns an allocator whose first block starts at base.
func New(w io.WriterAt, base uint64) *Allocator {
	return &Allocator{w: w, base: base, eof: base}
}

// Alloc reserves size bytes and returns their address. Nothing is written.
func (a *Allocator) Alloc(size uint64) uint64 {
	return a.AllocTagged(size, "")
}

// AllocTagged is Alloc with a label kept for diagnostics.
func (a *Allocator) AllocTagged(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	addr := a.eof
	if size == 0 {
		return addr
	}
	a.eof += size
	a.blocks = append(a.blocks, Block{Addr: addr, Size: size, Tag: tag})
	return addr
}

// Append reserves len(b) bytes and writes b there.
func (a *Allocator) Append(b []byte, tag string) (uint64, error) {
	addr := a.AllocTagged(uint64(len(b)), tag)
	if err := a.WriteAt(b, addr); err != nil {
		return 0, err
	}
	return addr, nil
}

// WriteAt writes b at addr, which must lie inside reserved space.
func (a *Allocator) WriteAt(b []byte, addr uint64) error {
	a.mu.Lock()
	eof := a.eof
	a.mu.Unlock()
	if addr < a.base || addr+uint64(len(b)) > eof {
		return fmt.Errorf("alloc: write [%#x,+%d) outside reserved space [%#x,%#x)", addr, len(b), a.base, eof)
	}
	if len(b) == 0 {
		return nil
	}
	if _, err := a.w.WriteAt(b, int64(addr)); err != nil {
		return fmt.Errorf("alloc: write at %#x: %w", addr, err)
	}
	return nil
}

// EOF returns the address one past the last reserved byte.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Base returns the first allocatable address.
func (a *Allocator) Base() uint64 { return a.base }

// Blocks returns a copy of every block handed out, in allocation order.
func (a *Allocator) Blocks() []Block {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Block, len(a.blocks))
	copy(out, a.blocks)
	return out
}

// Validate checks that no two blocks overlap and that all lie in [base, eof).
func (a *Allocator) Validate() error {
	blocks := a.Blocks()
	eof := a.EOF()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Addr < blocks[j].Addr })
	for i, b := range blocks {
		if b.Addr < a.base || b.Addr+b.Size > eof {
			return fmt.Errorf("alloc: block %q at %#x size %d outside [%#x,%#x)", b.Tag, b.Addr, b.Size, a.base, eof)
		}
		if i > 0 {
			prev := blocks[i-1]
			if prev.Addr+prev.Size > b.Addr {
				return fmt.Errorf("%w: %q [%#x,+%d) and %q [%#x,+%d)", ErrOverlap,
					prev.Tag, prev.Addr, prev.Size, b.Tag, b.Addr, b.Size)
			}
		}
	}
	return nil
}
