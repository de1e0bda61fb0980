package stem

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Validate checks that data is a non-empty 4-D *Array. A nil error means
// the data is valid. NaN and ±Inf elements do not fail validation; they are
// reported as a WarnNonFinite warning and logged at WARN.
//
// Lazy cubes must be loaded first.
func Validate(data any, opts ...Option) ([]Warning, error) {
	o := newOptions(opts)
	a, err := asArray(data)
	if err != nil {
		return nil, err
	}
	if err := checkCube(a); err != nil {
		return nil, err
	}
	var warnings []Warning
	if n := countNonFinite(a.data); n > 0 {
		w := Warning{Code: WarnNonFinite, Count: n}
		o.logger.Warn(w.String(), "count", n, "shape", a.shape)
		warnings = append(warnings, w)
	}
	return warnings, nil
}

func asArray(data any) (*Array, error) {
	a, ok := data.(*Array)
	if !ok || a == nil {
		return nil, fmt.Errorf("%w, got %T", ErrNotArray, data)
	}
	return a, nil
}

func checkCube(a *Array) error {
	if a.Rank() != 4 {
		return &ShapeError{Shape: a.Shape(), Err: ErrRank}
	}
	if a.Len() == 0 {
		return &ShapeError{Shape: a.Shape(), Err: ErrEmpty}
	}
	return nil
}

func countNonFinite(data any) int {
	switch s := data.(type) {
	case []float32:
		return nonFinite(s)
	case []float64:
		return nonFinite(s)
	}
	return 0
}

func nonFinite[T float32 | float64](s []T) int {
	n := 0
	for _, v := range s {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			n++
		}
	}
	return n
}

// Info summarizes a datacube.
type Info struct {
	Shape         Shape
	DType         DType
	SizeMB        float64
	ScanShape     Shape
	DetectorShape Shape
	Total         Count
	Mean          float64
	Std           float64
	Max           Count
	Min           Count
	Warnings      []Warning
}

// MarshalJSON writes non-finite floats as strings, which encoding/json
// otherwise rejects.
func (in *Info) MarshalJSON() ([]byte, error) {
	warnings := make([]string, len(in.Warnings))
	for i, w := range in.Warnings {
		warnings[i] = w.String()
	}
	return json.Marshal(struct {
		Shape         Shape    `json:"shape"`
		DType         string   `json:"dtype"`
		SizeMB        Count    `json:"size_mb"`
		ScanShape     Shape    `json:"scan_shape"`
		DetectorShape Shape    `json:"detector_shape"`
		Total         Count    `json:"total_counts"`
		Mean          Count    `json:"mean_counts"`
		Std           Count    `json:"std_counts"`
		Max           Count    `json:"max_counts"`
		Min           Count    `json:"min_counts"`
		Warnings      []string `json:"warnings,omitempty"`
	}{
		in.Shape, in.DType.String(), FloatCount(in.SizeMB), in.ScanShape, in.DetectorShape,
		in.Total, FloatCount(in.Mean), FloatCount(in.Std), in.Max, in.Min, warnings,
	})
}

// GetInfo validates data and computes its summary statistics. Validation
// errors are returned unchanged.
func GetInfo(data any, opts ...Option) (*Info, error) {
	warnings, err := Validate(data, opts...)
	if err != nil {
		return nil, err
	}
	a := data.(*Array)
	s := a.summarize()
	in := &Info{
		Shape:         a.Shape(),
		DType:         a.dtype,
		SizeMB:        float64(a.NBytes()) / (1024 * 1024),
		ScanShape:     a.ScanShape(),
		DetectorShape: a.DetectorShape(),
		Warnings:      warnings,
	}
	s.fill(in, a.dtype)
	return in, nil
}

// Count is a sum or extreme of the data, kept in the integer domain for
// integer data so that large totals stay exact.
type Count struct {
	kind countKind
	i    int64
	u    uint64
	f    float64
}

type countKind uint8

const (
	countFloat countKind = iota
	countInt
	countUint
)

func IntCount(v int64) Count     { return Count{kind: countInt, i: v} }
func UintCount(v uint64) Count   { return Count{kind: countUint, u: v} }
func FloatCount(v float64) Count { return Count{kind: countFloat, f: v} }

// IsInteger reports whether c holds an exact integer.
func (c Count) IsInteger() bool { return c.kind != countFloat }

// Float64 returns c as a float64.
func (c Count) Float64() float64 {
	switch c.kind {
	case countInt:
		return float64(c.i)
	case countUint:
		return float64(c.u)
	}
	return c.f
}

// Int64 returns c when it is a signed integer count.
func (c Count) Int64() (int64, bool) { return c.i, c.kind == countInt }

// Uint64 returns c when it is an unsigned integer count.
func (c Count) Uint64() (uint64, bool) { return c.u, c.kind == countUint }

func (c Count) String() string {
	switch c.kind {
	case countInt:
		return strconv.FormatInt(c.i, 10)
	case countUint:
		return strconv.FormatUint(c.u, 10)
	}
	return strconv.FormatFloat(c.f, 'g', -1, 64)
}

func (c Count) MarshalJSON() ([]byte, error) {
	if c.kind == countFloat && (math.IsNaN(c.f) || math.IsInf(c.f, 0)) {
		return json.Marshal(c.String())
	}
	return []byte(c.String()), nil
}

// summary accumulates statistics frame by frame. Mean and variance of each
// frame are merged with the parallel variance update.
type summary struct {
	n     int
	mean  float64
	m2    float64
	sum   float64
	max   float64
	min   float64
	nan   bool
	isum  int64
	imax  int64
	imin  int64
	usum  uint64
	umax  uint64
	umin  uint64
	ready bool
}

func (s *summary) addFrame(buf []float64) {
	nb := len(buf)
	mb := stat.Mean(buf, nil)
	m2b := stat.PopVariance(buf, nil) * float64(nb)
	s.sum += floats.Sum(buf)
	s.nan = s.nan || floats.HasNaN(buf)
	fmax, fmin := floats.Max(buf), floats.Min(buf)
	if s.n == 0 {
		s.mean, s.m2 = mb, m2b
		s.max, s.min = fmax, fmin
	} else {
		n := float64(s.n + nb)
		delta := mb - s.mean
		s.mean += delta * float64(nb) / n
		s.m2 += m2b + delta*delta*float64(s.n)*float64(nb)/n
		s.max = math.Max(s.max, fmax)
		s.min = math.Min(s.min, fmin)
	}
	s.n += nb
}

func addSigned[T number](s *summary, frame []T) {
	for _, v := range frame {
		x := int64(v)
		s.isum += x
		if !s.ready {
			s.imax, s.imin, s.ready = x, x, true
		} else if x > s.imax {
			s.imax = x
		} else if x < s.imin {
			s.imin = x
		}
	}
}

func addUnsigned[T number](s *summary, frame []T) {
	for _, v := range frame {
		x := uint64(v)
		s.usum += x
		if !s.ready {
			s.umax, s.umin, s.ready = x, x, true
		} else if x > s.umax {
			s.umax = x
		} else if x < s.umin {
			s.umin = x
		}
	}
}

func summarizeFrames[T number](s *summary, data []T, frameSize int, dt DType) {
	buf := make([]float64, 0, frameSize)
	for off := 0; off < len(data); off += frameSize {
		frame := data[off : off+frameSize]
		s.addFrame(toFloat64s(buf[:0], frame))
		switch {
		case dt.IsFloat():
		case dt.IsSigned():
			addSigned(s, frame)
		default:
			addUnsigned(s, frame)
		}
	}
}

func (a *Array) summarize() *summary {
	s := &summary{}
	frame := a.DetectorShape().NumElements()
	switch d := a.data.(type) {
	case []int8:
		summarizeFrames(s, d, frame, a.dtype)
	case []int16:
		summarizeFrames(s, d, frame, a.dtype)
	case []int32:
		summarizeFrames(s, d, frame, a.dtype)
	case []int64:
		summarizeFrames(s, d, frame, a.dtype)
	case []uint8:
		summarizeFrames(s, d, frame, a.dtype)
	case []uint16:
		summarizeFrames(s, d, frame, a.dtype)
	case []uint32:
		summarizeFrames(s, d, frame, a.dtype)
	case []uint64:
		summarizeFrames(s, d, frame, a.dtype)
	case []float32:
		summarizeFrames(s, d, frame, a.dtype)
	case []float64:
		summarizeFrames(s, d, frame, a.dtype)
	}
	return s
}

func (s *summary) fill(in *Info, dt DType) {
	n := float64(s.n)
	in.Mean = s.mean
	in.Std = math.Sqrt(s.m2 / n)
	switch {
	case dt.IsFloat():
		// Inf and NaN follow IEEE arithmetic: a running merge of means
		// would turn Inf into NaN, the plain sum does not.
		if math.IsNaN(s.sum) || math.IsInf(s.sum, 0) {
			in.Mean = s.sum / n
			in.Std = math.NaN()
		}
		if s.nan {
			s.max, s.min = math.NaN(), math.NaN()
		}
		in.Total, in.Max, in.Min = FloatCount(s.sum), FloatCount(s.max), FloatCount(s.min)
	case dt.IsSigned():
		in.Total, in.Max, in.Min = IntCount(s.isum), IntCount(s.imax), IntCount(s.imin)
	default:
		in.Total, in.Max, in.Min = UintCount(s.usum), UintCount(s.umax), UintCount(s.umin)
	}
}
