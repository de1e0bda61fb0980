package hdf5

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/heap"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/object"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/superblock"
)

// File is an HDF5 file opened with Open (for reading) or Create (for
// writing).
type File struct {
	path   string
	file   *os.File
	r      io.ReaderAt
	sb     *superblock.Superblock
	sizes  binary.Sizes
	root   *Group
	closed bool

	mu   sync.Mutex
	gcol map[uint64]*heap.Collection

	w *writer // non-nil for files from Create
}

// baseReader shifts every read by the superblock's base address, which is
// non-zero for files with a user block.
type baseReader struct {
	r    io.ReaderAt
	base int64
}

func (b baseReader) ReadAt(p []byte, off int64) (int, error) {
	return b.r.ReadAt(p, off+b.base)
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := openReader(osf, path)
	if err != nil {
		osf.Close()
		return nil, err
	}
	f.file = osf
	return f, nil
}

// OpenReader reads an HDF5 file from r. Close does not close r.
func OpenReader(r io.ReaderAt) (*File, error) {
	return openReader(r, "")
}

func openReader(r io.ReaderAt, path string) (*File, error) {
	sb, err := superblock.Read(r)
	if err != nil {
		if errors.Is(err, superblock.ErrSignature) {
			return nil, fmt.Errorf("%w: %s", ErrNotHDF5, path)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	f := &File{path: path, r: r, sb: sb, sizes: sb.Sizes, gcol: map[uint64]*heap.Collection{}}
	if sb.Base != 0 {
		f.r = baseReader{r: r, base: int64(sb.Base)}
	}
	root, err := f.openGroupAt(sb.Root, "/")
	if err != nil {
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	if sb.RootBTree != binary.Undefined {
		if _, ok := root.header.Find(message.TypeSymbolTable); !ok {
			// some old writers keep the root symbol table only in the
			// superblock scratch pad
			root.cached = &message.SymbolTable{BTree: sb.RootBTree, LocalHeap: sb.RootHeap}
		}
	}
	f.root = root
	return f, nil
}

// Close releases the file. For files from Create it first writes every
// pending object header and the superblock.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	var err error
	if f.w != nil {
		err = f.w.finish(f)
	}
	if f.file != nil {
		if cerr := f.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Path returns the name the file was opened with.
func (f *File) Path() string { return f.path }

// Version returns the superblock version.
func (f *File) Version() int {
	if f.sb == nil {
		return 2
	}
	return int(f.sb.Version)
}

// Root returns the root group.
func (f *File) Root() *Group { return f.root }

// OpenGroup opens a group by absolute path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by absolute path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// ReadAttr reads the value of an attribute named "/object/path@attr".
func (f *File) ReadAttr(path string) (any, error) {
	if f.closed {
		return nil, ErrClosed
	}
	objPath, name, err := ParseAttrPath(path)
	if err != nil {
		return nil, err
	}
	obj, err := f.root.open(objPath)
	if err != nil {
		return nil, err
	}
	var attr *Attribute
	switch o := obj.(type) {
	case *Group:
		attr, err = o.Attr(name)
	case *Dataset:
		attr, err = o.Attr(name)
	}
	if err != nil {
		return nil, err
	}
	return attr.Value()
}

func (f *File) readHeader(addr uint64) (*object.Header, error) {
	if f.w != nil {
		return nil, ErrWriteOnly
	}
	return object.Read(f.r, addr, f.sizes)
}

func (f *File) openGroupAt(addr uint64, path string) (*Group, error) {
	h, err := f.readHeader(addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Group{file: f, path: path, header: h}, nil
}

// globalObject fetches one object from a global heap collection, caching
// collections by address.
func (f *File) globalObject(addr uint64, index uint32) ([]byte, error) {
	f.mu.Lock()
	c, ok := f.gcol[addr]
	f.mu.Unlock()
	if !ok {
		var err error
		c, err = heap.ReadCollection(f.r, addr, f.sizes)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.gcol[addr] = c
		f.mu.Unlock()
	}
	return c.Object(index)
}
