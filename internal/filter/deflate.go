package filter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultDeflateLevel is used when the client data carries no level.
const DefaultDeflateLevel = 4

// Deflate is the zlib filter.
type Deflate struct {
	Level int
}

// NewDeflate reads the compression level from cd[0].
func NewDeflate(cd []uint32) *Deflate {
	level := DefaultDeflateLevel
	if len(cd) > 0 && cd[0] <= 9 {
		level = int(cd[0])
	}
	return &Deflate{Level: level}
}

func (*Deflate) ID() uint16 { return IDDeflate }

func (f *Deflate) Encode(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (*Deflate) Decode(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib header: %v", ErrCorrupt, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib stream: %v", ErrCorrupt, err)
	}
	return out, nil
}
