package hdf5

import (
	"fmt"
	"reflect"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/dtype"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/object"
)

// Attribute is a small named value attached to a group or dataset.
type Attribute struct {
	file *File
	msg  *message.Attribute
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.msg.Name }

// Shape returns the attribute dimensions; nil for scalars.
func (a *Attribute) Shape() []uint64 {
	return append([]uint64(nil), a.msg.Dataspace.Dims...)
}

// IsScalar reports whether the attribute has a scalar dataspace.
func (a *Attribute) IsScalar() bool { return a.msg.Dataspace.Kind == message.SpaceScalar }

// Kind returns the element type.
func (a *Attribute) Kind() (Kind, error) { return dtype.Of(a.msg.Datatype) }

// Read returns the elements as a typed slice such as []float64 or []string.
func (a *Attribute) Read() (any, error) {
	n := int(a.msg.Dataspace.NumElements())
	v, err := dtype.Decode(a.msg.Datatype, a.msg.Data, n, a.file.sizes, a.file.globalObject)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.msg.Name, err)
	}
	return v, nil
}

// Value is Read, except that scalar attributes return their single element
// (float64, int64, string, ...) instead of a one-element slice.
func (a *Attribute) Value() (any, error) {
	v, err := a.Read()
	if err != nil || !a.IsScalar() {
		return v, err
	}
	rv := reflect.ValueOf(v)
	if rv.Len() != 1 {
		return v, nil
	}
	return rv.Index(0).Interface(), nil
}

func readAttrs(f *File, h *object.Header) ([]*message.Attribute, error) {
	if raw, ok := h.Find(message.TypeAttributeInfo); ok {
		info, err := message.ParseAttributeInfo(raw.Data, f.sizes)
		if err != nil {
			return nil, err
		}
		if info.Dense() {
			return nil, fmt.Errorf("%w: dense attribute storage", ErrUnsupported)
		}
	}
	var out []*message.Attribute
	for _, raw := range h.All(message.TypeAttribute) {
		if raw.Shared() {
			return nil, fmt.Errorf("%w: shared attribute message", ErrUnsupported)
		}
		a, err := message.ParseAttribute(raw.Data, f.sizes)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func attrNames(f *File, h *object.Header) ([]string, error) {
	attrs, err := readAttrs(f, h)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return names, nil
}

func findAttr(f *File, h *object.Header, name, owner string) (*Attribute, error) {
	attrs, err := readAttrs(f, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", owner, err)
	}
	for _, a := range attrs {
		if a.Name == name {
			return &Attribute{file: f, msg: a}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, JoinAttrPath(owner, name))
}
