package filter

import (
	"errors"
	"fmt"

	lzf "github.com/zhuyie/golzf"
)

const (
	// lzfFilterVersion is the first client data value h5py writes.
	lzfFilterVersion = 4
	lzfCodecVersion  = 0x0105

	// lzfMinInput is the shortest input the codec accepts; it reads a
	// two-byte hash seed before checking the length.
	lzfMinInput = 4
)

// LZF is the h5py LZF filter. cd[2], when present, is the uncompressed chunk
// size and bounds decoding.
type LZF struct {
	ChunkSize int
}

// NewLZF reads the chunk size from the client data.
func NewLZF(cd []uint32) *LZF {
	f := &LZF{}
	if len(cd) > 2 {
		f.ChunkSize = int(cd[2])
	}
	return f
}

// LZFClientData is the client data h5py stores for a chunk of chunkBytes.
func LZFClientData(chunkBytes int) []uint32 {
	return []uint32{lzfFilterVersion, lzfCodecVersion, uint32(chunkBytes)}
}

func (*LZF) ID() uint16 { return IDLZF }

// Encode compresses in into a buffer one byte shorter than in, so a chunk
// that does not shrink reports ErrIncompressible.
func (*LZF) Encode(in []byte) ([]byte, error) {
	if len(in) < lzfMinInput {
		return nil, ErrIncompressible
	}
	out := make([]byte, len(in)-1)
	n, err := lzf.Compress(in, out)
	switch {
	case errors.Is(err, lzf.ErrInsufficientBuffer):
		return nil, ErrIncompressible
	case err != nil:
		return nil, fmt.Errorf("lzf: %w", err)
	}
	return out[:n], nil
}

// Decode decompresses in. Without a chunk size in the client data the
// output buffer grows until it fits.
func (f *LZF) Decode(in []byte) ([]byte, error) {
	size := f.ChunkSize
	if size <= 0 {
		size = 2 * len(in)
	}
	for {
		out := make([]byte, size)
		n, err := lzf.Decompress(in, out)
		switch {
		case err == nil:
			return out[:n], nil
		case errors.Is(err, lzf.ErrInsufficientBuffer) && f.ChunkSize <= 0:
			size *= 2
		case errors.Is(err, lzf.ErrInsufficientBuffer):
			return nil, fmt.Errorf("%w: lzf output exceeds %d bytes", ErrCorrupt, f.ChunkSize)
		default:
			return nil, fmt.Errorf("%w: lzf: %v", ErrCorrupt, err)
		}
	}
}
