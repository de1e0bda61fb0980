package hdf5

import (
	"fmt"
	"path"
	"sort"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/btree"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/heap"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/object"
)

// Group is an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header
	cached *message.SymbolTable

	b *groupBuilder // set for groups of files from Create
}

// Name returns the last path component, or "/" for the root.
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the absolute path of the group.
func (g *Group) Path() string { return g.path }

// Members returns the names of the group's links in ascending order.
func (g *Group) Members() ([]string, error) {
	if g.b != nil {
		return g.b.members(), nil
	}
	links, err := g.links()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names, nil
}

// OpenGroup opens a group by path relative to g. Absolute paths start from
// the root.
func (g *Group) OpenGroup(p string) (*Group, error) {
	obj, err := g.open(p)
	if err != nil {
		return nil, err
	}
	sub, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, p)
	}
	return sub, nil
}

// OpenDataset opens a dataset by path relative to g.
func (g *Group) OpenDataset(p string) (*Dataset, error) {
	obj, err := g.open(p)
	if err != nil {
		return nil, err
	}
	ds, ok := obj.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDataset, p)
	}
	return ds, nil
}

// Attrs lists attribute names in storage order.
func (g *Group) Attrs() ([]string, error) {
	if g.b != nil {
		return g.b.attrs.names(), nil
	}
	return attrNames(g.file, g.header)
}

// Attr returns the named attribute.
func (g *Group) Attr(name string) (*Attribute, error) {
	if g.b != nil {
		return nil, ErrWriteOnly
	}
	return findAttr(g.file, g.header, name, g.path)
}

func (g *Group) open(p string) (any, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	if g.b != nil {
		return g.b.open(p)
	}
	start := g
	if path.IsAbs(p) {
		start = g.file.root
	}
	return start.resolve(SplitPath(p), 0)
}

func (g *Group) resolve(parts []string, depth int) (any, error) {
	if len(parts) == 0 {
		return g, nil
	}
	links, err := g.links()
	if err != nil {
		return nil, err
	}
	var lk *message.Link
	for i := range links {
		if links[i].Name == parts[0] {
			lk = &links[i]
			break
		}
	}
	if lk == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, joinPath(g.path, parts[0]))
	}
	child := joinPath(g.path, parts[0])

	var obj any
	switch lk.Kind {
	case message.LinkHard:
		obj, err = g.file.openObject(lk.Address, child)
	case message.LinkSoft:
		if depth >= MaxLinkDepth {
			return nil, fmt.Errorf("%w: %s", ErrLinkDepth, child)
		}
		start := g
		if path.IsAbs(lk.Target) {
			start = g.file.root
		}
		obj, err = start.resolve(SplitPath(lk.Target), depth+1)
	default:
		return nil, fmt.Errorf("%w: external link %s -> %s:%s", ErrUnsupported, child, lk.TargetFile, lk.Target)
	}
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return obj, nil
	}
	sub, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, child)
	}
	return sub.resolve(parts[1:], depth)
}

// openObject reads the header at addr and wraps it as a group or dataset.
func (f *File) openObject(addr uint64, p string) (any, error) {
	h, err := f.readHeader(addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if _, ok := h.Find(message.TypeLayout); ok {
		return newDataset(f, p, h)
	}
	if _, ok := h.Find(message.TypeDatatype); ok {
		return nil, fmt.Errorf("%w: committed datatype %s", ErrUnsupported, p)
	}
	return &Group{file: f, path: p, header: h}, nil
}

// links returns the group's links from link messages or, for old-style
// groups, from the symbol table.
func (g *Group) links() ([]message.Link, error) {
	sizes := g.file.sizes
	if raw, ok := g.header.Find(message.TypeLinkInfo); ok {
		info, err := message.ParseLinkInfo(raw.Data, sizes)
		if err != nil {
			return nil, err
		}
		if info.Dense() {
			return nil, fmt.Errorf("%w: dense link storage in %s", ErrUnsupported, g.path)
		}
	}
	var out []message.Link
	for _, raw := range g.header.All(message.TypeLink) {
		l, err := message.ParseLink(raw.Data, sizes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.path, err)
		}
		out = append(out, *l)
	}

	st := g.cached
	if raw, ok := g.header.Find(message.TypeSymbolTable); ok {
		var err error
		if st, err = message.ParseSymbolTable(raw.Data, sizes); err != nil {
			return nil, err
		}
	}
	if st == nil {
		return out, nil
	}
	names, err := heap.ReadLocal(g.file.r, st.LocalHeap, sizes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	err = btree.WalkGroup(g.file.r, st.BTree, sizes, func(e btree.GroupEntry) error {
		name, err := names.String(e.NameOffset)
		if err != nil {
			return err
		}
		l := message.Link{Name: name, Kind: message.LinkHard, Address: e.Address}
		if off, ok := e.SoftLinkOffset(); ok {
			l.Kind = message.LinkSoft
			if l.Target, err = names.String(off); err != nil {
				return err
			}
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	return out, nil
}
