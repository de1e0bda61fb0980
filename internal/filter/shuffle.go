package filter

// Shuffle groups byte k of every element together, which helps the
// compressor that follows it.
type Shuffle struct {
	ElemSize int
}

// NewShuffle takes the element size from cd[0], falling back to elemSize.
func NewShuffle(cd []uint32, elemSize int) *Shuffle {
	if len(cd) > 0 && cd[0] > 0 {
		elemSize = int(cd[0])
	}
	if elemSize < 1 {
		elemSize = 1
	}
	return &Shuffle{ElemSize: elemSize}
}

func (*Shuffle) ID() uint16 { return IDShuffle }

func (f *Shuffle) Encode(in []byte) ([]byte, error) {
	n := len(in) / f.ElemSize
	if f.ElemSize == 1 || n <= 1 {
		return in, nil
	}
	out := make([]byte, len(in))
	for i := 0; i < n; i++ {
		for j := 0; j < f.ElemSize; j++ {
			out[j*n+i] = in[i*f.ElemSize+j]
		}
	}
	copy(out[n*f.ElemSize:], in[n*f.ElemSize:])
	return out, nil
}

func (f *Shuffle) Decode(in []byte) ([]byte, error) {
	n := len(in) / f.ElemSize
	if f.ElemSize == 1 || n <= 1 {
		return in, nil
	}
	out := make([]byte, len(in))
	for i := 0; i < n; i++ {
		for j := 0; j < f.ElemSize; j++ {
			out[i*f.ElemSize+j] = in[j*n+i]
		}
	}
	copy(out[n*f.ElemSize:], in[n*f.ElemSize:])
	return out, nil
}
