package hdf5

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/dtype"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/message"
)

// pendingAttr is an attribute waiting for its object header. String values
// reference the shared pool, whose addresses are known only at Close.
type pendingAttr struct {
	name string
	kind dtype.Kind
	dims []uint64 // nil for scalars
	data []byte
	strs []stringRef
}

type attrSet struct {
	list []*pendingAttr
}

func (s *attrSet) names() []string {
	out := make([]string, len(s.list))
	for i, a := range s.list {
		out[i] = a.name
	}
	return out
}

func (s *attrSet) set(pool *stringPool, name string, value any) error {
	if name == "" {
		return fmt.Errorf("%w: empty attribute name", ErrInvalidPath)
	}
	slice, scalar, err := dtype.Normalize(value)
	if err != nil {
		return fmt.Errorf("%w: attribute %q: %v", ErrUnsupported, name, err)
	}
	kind, err := dtype.KindOf(slice)
	if err != nil {
		return fmt.Errorf("%w: attribute %q: %v", ErrUnsupported, name, err)
	}
	a := &pendingAttr{name: name, kind: kind}
	if !scalar {
		a.dims = []uint64{uint64(dtype.Len(slice))}
	}
	if kind == dtype.String {
		for _, v := range slice.([]string) {
			a.strs = append(a.strs, pool.add(v))
		}
	} else if a.data, _, err = dtype.Encode(slice); err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}

	for i, old := range s.list {
		if old.name == name {
			s.list[i] = a
			return nil
		}
	}
	s.list = append(s.list, a)
	return nil
}

func (s *attrSet) messages(sizes binary.Sizes) ([]message.Raw, error) {
	var out []message.Raw
	for _, a := range s.list {
		dt, err := a.kind.Datatype(sizes)
		if err != nil {
			return nil, err
		}
		space := message.Scalar()
		if a.dims != nil {
			space = message.Simple(a.dims...)
		}
		data := a.data
		for _, ref := range a.strs {
			data = dtype.AppendVarLen(data, sizes, ref.length, ref.col.addr, ref.index)
		}
		m := &message.Attribute{Name: a.name, Datatype: dt, Dataspace: space, Data: data}
		enc, err := m.Encode(sizes)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.name, err)
		}
		out = append(out, message.Raw{Type: message.TypeAttribute, Data: enc})
	}
	return out, nil
}
