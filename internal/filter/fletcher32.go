package filter

import (
	"fmt"
	"math/bits"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Fletcher32 appends a checksum on write and verifies and strips it on read.
type Fletcher32 struct{}

func (Fletcher32) ID() uint16 { return IDFletcher32 }

func (Fletcher32) Encode(in []byte) ([]byte, error) {
	out := make([]byte, len(in), len(in)+4)
	copy(out, in)
	return binary.Order.AppendUint32(out, binary.Fletcher32(in)), nil
}

func (Fletcher32) Decode(in []byte) ([]byte, error) {
	if len(in) < 4 {
		return nil, fmt.Errorf("%w: fletcher32 chunk of %d bytes", ErrCorrupt, len(in))
	}
	data := in[:len(in)-4]
	stored := binary.Order.Uint32(in[len(in)-4:])
	sum := binary.Fletcher32(data)
	// files from HDF5 before 1.6.3 stored the sum byte-swapped
	if stored != sum && stored != bits.ReverseBytes32(sum) {
		return nil, fmt.Errorf("%w: fletcher32 stored %#08x computed %#08x", ErrCorrupt, stored, sum)
	}
	return data, nil
}
