package hdf5

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/dtype"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/filter"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/layout"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

type datasetBuilder struct {
	msgs  []message.Raw
	attrs attrSet
}

// CreateDataset writes data as a new dataset of shape dims. data is a Go
// scalar or a flat row-major slice of a numeric, bool or string type; a nil
// dims means a scalar for scalar data and one dimension otherwise.
//
// The element data is written immediately. Without options the dataset is
// contiguous; any filter makes it chunked, using GuessChunks when WithChunks
// is not given.
func (g *Group) CreateDataset(name string, data any, dims []uint64, opts ...DatasetOption) (*Dataset, error) {
	if err := g.writable(name); err != nil {
		return nil, err
	}
	p := joinPath(g.path, name)
	o := &datasetOptions{}
	for _, opt := range opts {
		opt(o)
	}

	slice, scalar, err := dtype.Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupported, p, err)
	}
	kind, err := dtype.KindOf(slice)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupported, p, err)
	}
	n := dtype.Len(slice)
	space := message.Scalar()
	switch {
	case dims != nil:
		space = message.Simple(dims...)
	case !scalar:
		space = message.Simple(uint64(n))
	}
	if space.NumElements() != uint64(n) {
		return nil, fmt.Errorf("%w: %s: %d elements for shape %v", ErrShape, p, n, dims)
	}

	w := g.file.w
	dt, err := kind.Datatype(w.sizes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupported, p, err)
	}
	var raw []byte
	if kind == dtype.String {
		raw, err = w.writeStrings(slice.([]string))
	} else {
		raw, _, err = dtype.Encode(slice)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	elemSize := int(dt.Size)

	chunks := o.chunks
	if o.filtered() && space.Rank() == 0 {
		return nil, fmt.Errorf("%w: %s: scalar datasets cannot be filtered", ErrShape, p)
	}
	if chunks == nil && o.filtered() {
		chunks = GuessChunks(space.Dims, elemSize)
	}
	var pipeMsg *message.Pipeline
	if chunks != nil {
		if err := layout.CheckChunks(space.Dims, chunks, elemSize); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShape, p, err)
		}
		if pm := o.pipeline(chunks, elemSize); len(pm.Filters) > 0 {
			pipeMsg = pm
		}
	}

	fill := &message.FillValue{AllocTime: message.AllocLate, WriteTime: 2}
	var lay *message.Layout
	if chunks != nil {
		fill.AllocTime = message.AllocIncremental
		pl, err := filter.NewPipeline(pipeMsg, elemSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		lay, err = layout.WriteChunked(w.space, w.sizes, raw, space.Dims, chunks, elemSize, pl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	} else if lay, err = layout.WriteContiguous(w.space, raw); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	dtBytes, err := dt.Encode(w.sizes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	layBytes, err := lay.Encode(w.sizes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	b := &datasetBuilder{msgs: []message.Raw{
		{Type: message.TypeDataspace, Data: space.Encode(w.sizes)},
		{Type: message.TypeDatatype, Flags: message.FlagConstant, Data: dtBytes},
		{Type: message.TypeFillValue, Flags: message.FlagConstant, Data: fill.Encode()},
		{Type: message.TypeLayout, Data: layBytes},
	}}
	if pipeMsg != nil {
		b.msgs = append(b.msgs, message.Raw{Type: message.TypeFilterPipeline, Data: pipeMsg.Encode()})
	}
	for _, a := range o.attributes {
		if err := b.attrs.set(&w.pool, a.name, a.value); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	d := &Dataset{
		file:     g.file,
		path:     p,
		space:    space,
		datatype: dt,
		layout:   lay,
		pipeline: pipeMsg,
		b:        b,
	}
	g.b.children = append(g.b.children, child{name: name, dataset: d})
	return d, nil
}

// pipeline returns the filter pipeline message in the order h5py applies
// filters: shuffle, compression, checksum.
func (o *datasetOptions) pipeline(chunks []uint64, elemSize int) *message.Pipeline {
	pm := &message.Pipeline{}
	if o.shuffle {
		pm.Filters = append(pm.Filters, message.FilterInfo{
			ID: filter.IDShuffle, Flags: message.FilterOptional, Values: []uint32{uint32(elemSize)},
		})
	}
	switch {
	case o.lzf:
		chunkBytes := elemSize
		for _, c := range chunks {
			chunkBytes *= int(c)
		}
		pm.Filters = append(pm.Filters, message.FilterInfo{
			ID: filter.IDLZF, Flags: message.FilterOptional, Name: "lzf", Values: filter.LZFClientData(chunkBytes),
		})
	case o.deflate > 0:
		pm.Filters = append(pm.Filters, message.FilterInfo{
			ID: filter.IDDeflate, Flags: message.FilterOptional, Values: []uint32{uint32(o.deflate)},
		})
	}
	if o.fletcher32 {
		pm.Filters = append(pm.Filters, message.FilterInfo{ID: filter.IDFletcher32})
	}
	return pm
}

// SetAttr sets an attribute on a dataset being written. See Group.SetAttr.
func (d *Dataset) SetAttr(name string, value any) error {
	if d.file.closed {
		return ErrClosed
	}
	if d.b == nil {
		return ErrReadOnly
	}
	return d.b.attrs.set(&d.file.w.pool, name, value)
}

func (d *Dataset) flush(w *writer) (uint64, error) {
	attrs, err := d.b.attrs.messages(w.sizes)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", d.path, err)
	}
	return w.writeHeader(append(d.b.msgs[:len(d.b.msgs):len(d.b.msgs)], attrs...), d.path)
}
