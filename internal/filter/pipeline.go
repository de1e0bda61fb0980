package filter

import (
	"errors"
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// Pipeline applies a dataset's filters in order on write and in reverse on read.
type Pipeline struct {
	infos   []message.FilterInfo
	filters []Filter // nil for optional filters that are unavailable
}

// NewPipeline builds a pipeline from a filter pipeline message. A nil message
// yields an empty pipeline. Mandatory filters that are not available fail
// here; optional ones fail only if a chunk actually used them.
func NewPipeline(msg *message.Pipeline, elemSize int) (*Pipeline, error) {
	p := &Pipeline{}
	if msg == nil {
		return p, nil
	}
	for _, info := range msg.Filters {
		f, err := New(info, elemSize)
		if err != nil && !info.Optional() {
			return nil, err
		}
		p.infos = append(p.infos, info)
		p.filters = append(p.filters, f)
	}
	if len(p.filters) > 32 {
		return nil, fmt.Errorf("filter: %d filters exceed the 32-bit mask", len(p.filters))
	}
	return p, nil
}

// Len returns the number of filters.
func (p *Pipeline) Len() int { return len(p.filters) }

// Empty reports whether the pipeline has no filters.
func (p *Pipeline) Empty() bool { return len(p.filters) == 0 }

// Names lists filter names in pipeline order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.infos))
	for i, info := range p.infos {
		out[i] = Name(info.ID)
	}
	return out
}

// Encode runs every filter in order and returns the stored bytes with the
// mask of filters that were skipped.
func (p *Pipeline) Encode(in []byte) ([]byte, uint32, error) {
	data := in
	var mask uint32
	for i, f := range p.filters {
		if f == nil {
			mask |= 1 << uint(i)
			continue
		}
		out, err := f.Encode(data)
		if err != nil {
			if p.infos[i].Optional() {
				mask |= 1 << uint(i)
				continue
			}
			return nil, 0, fmt.Errorf("%s encode: %w", Name(f.ID()), err)
		}
		data = out
	}
	return data, mask, nil
}

// Decode undoes the filters not set in mask, last filter first.
func (p *Pipeline) Decode(in []byte, mask uint32) ([]byte, error) {
	data := in
	for i := len(p.filters) - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			continue
		}
		f := p.filters[i]
		if f == nil {
			return nil, fmt.Errorf("%w: %s (id %d) was applied to this chunk", ErrUnsupported, Name(p.infos[i].ID), p.infos[i].ID)
		}
		out, err := f.Decode(data)
		if err != nil {
			if errors.Is(err, ErrCorrupt) {
				return nil, err
			}
			return nil, fmt.Errorf("%s decode: %w", Name(f.ID()), err)
		}
		data = out
	}
	return data, nil
}
