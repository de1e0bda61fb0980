package stem

import (
	"fmt"
	"sort"
)

// Metadata holds format-dependent key/value pairs. Values are scalars
// (string, bool, int64, float64, ...) or arrays (*Array, []string).
type Metadata map[string]any

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Optional is a value that may be absent.
type Optional[T any] struct {
	v  T
	ok bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{v: v, ok: true} }

// None returns an absent value.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// IsSome reports whether the value is present.
func (o Optional[T]) IsSome() bool { return o.ok }

func (o Optional[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprint(o.v)
}

// Calibration holds pixel-to-physical scale factors.
type Calibration struct {
	RealPixelSize       Optional[float64]
	ReciprocalPixelSize Optional[float64]
}

// Map returns the present fields under the keys the MIB readers use.
func (c Calibration) Map() map[string]float64 {
	m := make(map[string]float64, 2)
	if v, ok := c.RealPixelSize.Get(); ok {
		m["R_pixel_size"] = v
	}
	if v, ok := c.ReciprocalPixelSize.Get(); ok {
		m["Q_pixel_size"] = v
	}
	return m
}

// calibrationFrom picks pixel sizes out of metadata when present.
func calibrationFrom(m Metadata) Calibration {
	return Calibration{
		RealPixelSize:       lookupFloat(m, "R_pixel_size", "real_pixel_size"),
		ReciprocalPixelSize: lookupFloat(m, "Q_pixel_size", "reciprocal_pixel_size"),
	}
}

func lookupFloat(m Metadata, keys ...string) Optional[float64] {
	for _, k := range keys {
		if f, ok := toFloat(m[k]); ok {
			return Some(f)
		}
	}
	return None[float64]()
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// Record is a loaded 4D-STEM dataset.
type Record struct {
	// Data is an *Array, or a lazy Cube when loaded WithLazy.
	Data        Cube
	Metadata    Metadata
	Calibration Calibration
	Format      Format
	Path        string
}

// ScanShape returns the first two dimensions of the data.
func (r *Record) ScanShape() Shape { return subShape(r.Data.Shape(), 0) }

// DetectorShape returns the last two dimensions of the data.
func (r *Record) DetectorShape() Shape { return subShape(r.Data.Shape(), 2) }

// check enforces the invariants every loaded record satisfies.
func (r *Record) check() error {
	if r.Data == nil {
		return fmt.Errorf("%s: reader returned no data", r.Path)
	}
	s := r.Data.Shape()
	if len(s) != 4 {
		return &ShapeError{Shape: s, Err: ErrRank}
	}
	if s.NumElements() == 0 {
		return &ShapeError{Shape: s, Err: ErrEmpty}
	}
	if r.Metadata == nil {
		r.Metadata = Metadata{}
	}
	return nil
}
