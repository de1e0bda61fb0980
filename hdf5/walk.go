package hdf5

import "errors"

// WalkFunc is called for each object during a walk. obj is a *Group or a
// *Dataset, or nil when the object could not be opened, in which case err
// says why. Returning SkipGroup from a group visit skips its members; any
// other non-nil error stops the walk and is returned by Walk.
type WalkFunc func(path string, obj any, err error) error

// SkipGroup tells Walk not to descend into the group just visited.
var SkipGroup = errors.New("skip this group")

// Walk visits g and everything below it, depth first, members in name
// order.
//
//	hdf5.Walk(f.Root(), func(path string, obj any, err error) error {
//	    if ds, ok := obj.(*hdf5.Dataset); ok {
//	        fmt.Println(path, ds.Shape())
//	    }
//	    return err
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn)
	if errors.Is(err, SkipGroup) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}
	members, err := g.Members()
	if err != nil {
		return fn(g.Path(), nil, err)
	}
	for _, name := range members {
		p := joinPath(g.Path(), name)
		obj, err := g.open(name)
		if err != nil {
			if err := fn(p, nil, err); err != nil && !errors.Is(err, SkipGroup) {
				return err
			}
			continue
		}
		switch o := obj.(type) {
		case *Group:
			err = walkGroup(o, fn)
		case *Dataset:
			err = fn(p, o, nil)
		}
		if err != nil && !errors.Is(err, SkipGroup) {
			return err
		}
	}
	return nil
}

// AttrInfo describes one attribute met by WalkAttrs.
type AttrInfo struct {
	// Path is the full attribute path, e.g. "/group/dataset@attr".
	Path       string
	ObjectPath string
	Name       string

	// Value holds the decoded value, or nil with Err set when decoding
	// failed.
	Value any
	Err   error
}

// WalkAttrs calls fn for every attribute of every group and dataset in the
// file.
func (f *File) WalkAttrs(fn func(AttrInfo) error) error {
	if f.closed {
		return ErrClosed
	}
	return Walk(f.root, func(p string, obj any, err error) error {
		if err != nil {
			return nil
		}
		var (
			names []string
			get   func(string) (*Attribute, error)
		)
		switch o := obj.(type) {
		case *Group:
			names, err = o.Attrs()
			get = o.Attr
		case *Dataset:
			names, err = o.Attrs()
			get = o.Attr
		}
		if err != nil {
			return fn(AttrInfo{ObjectPath: p, Err: err})
		}
		for _, name := range names {
			info := AttrInfo{Path: JoinAttrPath(p, name), ObjectPath: p, Name: name}
			var a *Attribute
			if a, info.Err = get(name); info.Err == nil {
				info.Value, info.Err = a.Value()
			}
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}
