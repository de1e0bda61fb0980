package hdf5

import (
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/dtype"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/filter"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/layout"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/object"
)

// Dataset is an HDF5 dataset.
type Dataset struct {
	file     *File
	path     string
	header   *object.Header
	space    *message.Dataspace
	datatype *message.Datatype
	layout   *message.Layout
	pipeline *message.Pipeline
	fill     []byte

	once   sync.Once
	reader layout.Layout
	err    error

	b *datasetBuilder // set for datasets of files from Create
}

func newDataset(f *File, p string, h *object.Header) (*Dataset, error) {
	d := &Dataset{file: f, path: p, header: h}
	raw, ok := h.Find(message.TypeDataspace)
	if !ok {
		return nil, fmt.Errorf("%s: dataset without dataspace", p)
	}
	var err error
	if d.space, err = message.ParseDataspace(raw.Data, f.sizes); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	if raw, ok = h.Find(message.TypeDatatype); !ok {
		return nil, fmt.Errorf("%s: dataset without datatype", p)
	}
	if raw.Shared() {
		return nil, fmt.Errorf("%w: %s uses a committed datatype", ErrUnsupported, p)
	}
	if d.datatype, _, err = message.ParseDatatype(raw.Data); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	if raw, ok = h.Find(message.TypeLayout); !ok {
		return nil, fmt.Errorf("%s: dataset without layout", p)
	}
	if d.layout, err = message.ParseLayout(raw.Data, f.sizes); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	if raw, ok := h.Find(message.TypeFilterPipeline); ok {
		if d.pipeline, err = message.ParsePipeline(raw.Data); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	var fv *message.FillValue
	if raw, ok := h.Find(message.TypeFillValue); ok {
		fv, err = message.ParseFillValue(raw.Data)
	} else if raw, ok := h.Find(message.TypeFillValueOld); ok {
		fv, err = message.ParseFillValueOld(raw.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if fv != nil && len(fv.Value) == int(d.datatype.Size) {
		d.fill = fv.Value
	}
	return d, nil
}

// Name returns the last path component.
func (d *Dataset) Name() string { return path.Base(d.path) }

// Path returns the absolute path of the dataset.
func (d *Dataset) Path() string { return d.path }

// Shape returns the dimensions; nil for scalar and null datasets.
func (d *Dataset) Shape() []uint64 { return append([]uint64(nil), d.space.Dims...) }

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int { return d.space.Rank() }

// NumElements returns the number of elements.
func (d *Dataset) NumElements() uint64 { return d.space.NumElements() }

// IsScalar reports whether the dataset has a scalar dataspace.
func (d *Dataset) IsScalar() bool { return d.space.Kind == message.SpaceScalar }

// ElemSize returns the stored size of one element in bytes.
func (d *Dataset) ElemSize() int { return int(d.datatype.Size) }

// Kind returns the Go element type, or Invalid when the datatype cannot be
// decoded.
func (d *Dataset) Kind() Kind {
	k, err := dtype.Of(d.datatype)
	if err != nil {
		return Invalid
	}
	return k
}

// TypeName describes the datatype: the numpy name when it decodes, else the
// HDF5 class and size.
func (d *Dataset) TypeName() string {
	if k := d.Kind(); k != Invalid {
		return k.String()
	}
	return fmt.Sprintf("%s%d", d.datatype.Class, d.datatype.Size)
}

// LayoutClass returns "compact", "contiguous" or "chunked".
func (d *Dataset) LayoutClass() string { return d.layout.Class.String() }

// ChunkShape returns the chunk dimensions, or nil for unchunked datasets.
func (d *Dataset) ChunkShape() []uint64 {
	if d.layout.Class != message.LayoutChunked {
		return nil
	}
	return append([]uint64(nil), d.layout.ChunkDims...)
}

// Filters returns the names of the filters applied to each chunk, in
// application order.
func (d *Dataset) Filters() []string {
	if d.pipeline == nil {
		return nil
	}
	names := make([]string, len(d.pipeline.Filters))
	for i, fi := range d.pipeline.Filters {
		names[i] = filter.Name(fi.ID)
	}
	return names
}

// Attrs lists attribute names in storage order.
func (d *Dataset) Attrs() ([]string, error) {
	if d.b != nil {
		return d.b.attrs.names(), nil
	}
	return attrNames(d.file, d.header)
}

// Attr returns the named attribute.
func (d *Dataset) Attr(name string) (*Attribute, error) {
	if d.b != nil {
		return nil, ErrWriteOnly
	}
	return findAttr(d.file, d.header, name, d.path)
}

// Read returns every element as a typed slice: []float32, []uint16,
// []string, []bool and so on. Scalar datasets yield a one-element slice.
func (d *Dataset) Read() (any, error) {
	return d.ReadSlab(make([]uint64, d.Rank()), d.space.Dims)
}

// ReadSlab returns the hyperslab [start, start+count) in row-major order.
// Only the chunks that meet the selection are read and decoded.
func (d *Dataset) ReadSlab(start, count []uint64) (any, error) {
	if d.file.closed {
		return nil, ErrClosed
	}
	if d.b != nil {
		return nil, ErrWriteOnly
	}
	if _, err := dtype.Of(d.datatype); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupported, d.path, err)
	}
	if d.space.Kind == message.SpaceNull {
		return dtype.Decode(d.datatype, nil, 0, d.file.sizes, nil)
	}
	l, err := d.storage()
	if err != nil {
		return nil, err
	}
	raw, err := l.ReadSlice(start, count)
	if err != nil {
		if errors.Is(err, layout.ErrUnsupported) || errors.Is(err, filter.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupported, d.path, err)
		}
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	n := 1
	for _, c := range count {
		n *= int(c)
	}
	v, err := dtype.Decode(d.datatype, raw, n, d.file.sizes, d.file.globalObject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	return v, nil
}

func (d *Dataset) storage() (layout.Layout, error) {
	d.once.Do(func() {
		var p *filter.Pipeline
		if p, d.err = filter.NewPipeline(d.pipeline, d.ElemSize()); d.err != nil {
			d.err = fmt.Errorf("%w: %s: %v", ErrUnsupported, d.path, d.err)
			return
		}
		d.reader, d.err = layout.New(d.file.r, d.file.sizes, layout.Storage{
			Layout:   d.layout,
			Dims:     d.space.Dims,
			ElemSize: d.ElemSize(),
			Pipeline: p,
			Fill:     d.fill,
		})
		if errors.Is(d.err, layout.ErrUnsupported) {
			d.err = fmt.Errorf("%w: %s: %v", ErrUnsupported, d.path, d.err)
		}
	})
	return d.reader, d.err
}
