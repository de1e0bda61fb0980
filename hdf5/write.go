package hdf5

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/alloc"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/dtype"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/heap"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/object"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/superblock"
)

// Create creates an HDF5 file for writing, truncating any existing file.
// Nothing is readable until Close has written the object headers and the
// superblock.
func Create(path string) (*File, error) {
	osf, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f := newWriteFile(osf, path)
	f.file = osf
	return f, nil
}

// CreateWriter is Create for an arbitrary destination. Close does not close
// w.
func CreateWriter(w io.WriterAt) *File {
	return newWriteFile(w, "")
}

func newWriteFile(w io.WriterAt, p string) *File {
	sizes := binary.DefaultSizes
	f := &File{path: p, sizes: sizes}
	f.w = &writer{
		out:   w,
		sizes: sizes,
		space: alloc.New(w, uint64(superblock.Size(sizes))),
	}
	f.root = &Group{file: f, path: "/", b: &groupBuilder{}}
	return f
}

// writer holds the state of a file being created.
type writer struct {
	out   io.WriterAt
	sizes binary.Sizes
	space *alloc.Allocator
	pool  stringPool
}

// finish writes the attribute string heaps, every object header bottom-up,
// and finally the superblock at offset 0.
func (w *writer) finish(f *File) error {
	if err := w.pool.flush(w.space, w.sizes); err != nil {
		return err
	}
	root, err := f.root.flush(w)
	if err != nil {
		return err
	}
	sb := superblock.Encode(w.sizes, root, w.space.EOF())
	if _, err := w.out.WriteAt(sb, 0); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	return w.space.Validate()
}

// writeHeader encodes and appends an object header.
func (w *writer) writeHeader(msgs []message.Raw, p string) (uint64, error) {
	buf, err := object.Encode(msgs, w.sizes)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p, err)
	}
	return w.space.Append(buf, "object header "+p)
}

// maxHeapObjects is the most objects a global heap collection can index.
const maxHeapObjects = 0xffff

type stringRef struct {
	col    *poolCollection
	index  uint32
	length uint32
}

type poolCollection struct {
	cw   heap.CollectionWriter
	addr uint64
}

// stringPool collects attribute strings into shared global heap
// collections, which are written at Close.
type stringPool struct {
	cols []*poolCollection
}

func (p *stringPool) add(s string) stringRef {
	if len(p.cols) == 0 || p.cols[len(p.cols)-1].cw.Len() >= maxHeapObjects {
		p.cols = append(p.cols, &poolCollection{})
	}
	c := p.cols[len(p.cols)-1]
	return stringRef{col: c, index: c.cw.Add([]byte(s)), length: uint32(len(s))}
}

func (p *stringPool) flush(s *alloc.Allocator, sizes binary.Sizes) error {
	for _, c := range p.cols {
		addr, err := s.Append(c.cw.Encode(sizes), "global heap")
		if err != nil {
			return err
		}
		c.addr = addr
	}
	return nil
}

// writeStrings stores a string dataset in collections of its own and
// returns the variable-length element references.
func (w *writer) writeStrings(strs []string) ([]byte, error) {
	var out []byte
	for len(strs) > 0 {
		n := min(len(strs), maxHeapObjects)
		var cw heap.CollectionWriter
		for _, s := range strs[:n] {
			cw.Add([]byte(s))
		}
		addr, err := w.space.Append(cw.Encode(w.sizes), "global heap")
		if err != nil {
			return nil, err
		}
		for i, s := range strs[:n] {
			out = dtype.AppendVarLen(out, w.sizes, uint32(len(s)), addr, uint32(i+1))
		}
		strs = strs[n:]
	}
	return out, nil
}

type child struct {
	name    string
	group   *Group
	dataset *Dataset
}

type groupBuilder struct {
	children []child
	attrs    attrSet
}

func (b *groupBuilder) lookup(name string) (child, bool) {
	for _, c := range b.children {
		if c.name == name {
			return c, true
		}
	}
	return child{}, false
}

func (b *groupBuilder) members() []string {
	names := make([]string, len(b.children))
	for i, c := range b.children {
		names[i] = c.name
	}
	sort.Strings(names)
	return names
}

func (b *groupBuilder) open(p string) (any, error) {
	parts := SplitPath(p)
	var obj any
	cur := b
	at := "/"
	for _, name := range parts {
		if cur == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotGroup, at)
		}
		c, ok := cur.lookup(name)
		at = joinPath(at, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, at)
		}
		if c.group != nil {
			obj, cur = c.group, c.group.b
		} else {
			obj, cur = c.dataset, nil
		}
	}
	return obj, nil
}

// writable checks that g belongs to an open file from Create and that name
// is free.
func (g *Group) writable(name string) error {
	if g.file.closed {
		return ErrClosed
	}
	if g.b == nil {
		return ErrReadOnly
	}
	if err := validName(name); err != nil {
		return err
	}
	if _, ok := g.b.lookup(name); ok {
		return fmt.Errorf("%w: %s", ErrExists, joinPath(g.path, name))
	}
	return nil
}

// CreateGroup adds an empty subgroup.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.writable(name); err != nil {
		return nil, err
	}
	sub := &Group{file: g.file, path: joinPath(g.path, name), b: &groupBuilder{}}
	g.b.children = append(g.b.children, child{name: name, group: sub})
	return sub, nil
}

// RequireGroup returns the named subgroup, creating it if needed.
func (g *Group) RequireGroup(name string) (*Group, error) {
	if g.b != nil {
		if c, ok := g.b.lookup(name); ok {
			if c.group == nil {
				return nil, fmt.Errorf("%w: %s", ErrNotGroup, joinPath(g.path, name))
			}
			return c.group, nil
		}
	}
	return g.CreateGroup(name)
}

// SetAttr sets an attribute on a group being written. Values may be
// numeric, bool or string scalars, or one-dimensional slices of those. A
// second call with the same name replaces the value.
func (g *Group) SetAttr(name string, value any) error {
	if g.file.closed {
		return ErrClosed
	}
	if g.b == nil {
		return ErrReadOnly
	}
	return g.b.attrs.set(&g.file.w.pool, name, value)
}

func (g *Group) flush(w *writer) (uint64, error) {
	msgs := []message.Raw{
		{Type: message.TypeLinkInfo, Data: message.EncodeLinkInfo(w.sizes)},
		{Type: message.TypeGroupInfo, Data: message.EncodeGroupInfo()},
	}
	for _, c := range g.b.children {
		var (
			addr uint64
			err  error
		)
		if c.group != nil {
			addr, err = c.group.flush(w)
		} else {
			addr, err = c.dataset.flush(w)
		}
		if err != nil {
			return 0, err
		}
		l := &message.Link{Name: c.name, Kind: message.LinkHard, Address: addr}
		data, err := l.Encode(w.sizes)
		if err != nil {
			return 0, err
		}
		msgs = append(msgs, message.Raw{Type: message.TypeLink, Data: data})
	}
	attrs, err := g.b.attrs.messages(w.sizes)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", g.path, err)
	}
	return w.writeHeader(append(msgs, attrs...), g.path)
}
