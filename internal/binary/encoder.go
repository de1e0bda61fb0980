package binary

// Encoder appends fields to a growing byte slice.
type Encoder struct {
	buf   []byte
	sizes Sizes
}

// NewEncoder returns an empty encoder.
func NewEncoder(sizes Sizes) *Encoder {
	return &Encoder{sizes: sizes}
}

// Bytes returns the encoded data.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

// Sizes returns the configured offset and length widths.
func (e *Encoder) Sizes() Sizes { return e.sizes }

func (e *Encoder) U8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) U16(v uint16) { e.buf = Order.AppendUint16(e.buf, v) }

func (e *Encoder) U32(v uint32) { e.buf = Order.AppendUint32(e.buf, v) }

func (e *Encoder) U64(v uint64) { e.buf = Order.AppendUint64(e.buf, v) }

// Uint appends the low n bytes of v, little-endian.
func (e *Encoder) Uint(v uint64, n int) {
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, byte(v>>(8*uint(i))))
	}
}

// Offset appends a file address. Undefined is truncated to the offset width,
// which keeps it all ones.
func (e *Encoder) Offset(addr uint64) { e.Uint(addr, e.sizes.Offset) }

// Length appends a length field.
func (e *Encoder) Length(n uint64) { e.Uint(n, e.sizes.Length) }

// Raw appends b verbatim.
func (e *Encoder) Raw(b []byte) { e.buf = append(e.buf, b...) }

// Zero appends n zero bytes.
func (e *Encoder) Zero(n int) {
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, 0)
	}
}

// Pad appends zero bytes until the length is a multiple of n.
func (e *Encoder) Pad(n int) {
	if r := len(e.buf) % n; r != 0 {
		e.Zero(n - r)
	}
}

// AppendChecksum appends the lookup3 checksum of everything encoded so far.
func (e *Encoder) AppendChecksum() { e.U32(Lookup3(e.buf)) }
