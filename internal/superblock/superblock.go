package superblock

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Signature is the eight-byte HDF5 format signature.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

var (
	ErrSignature = errors.New("superblock: HDF5 signature not found")
	ErrVersion   = errors.New("superblock: unsupported version")
	ErrInvalid   = errors.New("superblock: invalid structure")
)

const maxSearchBytes = 1 << 40

// Superblock holds the fields of any superblock version that the rest of the
// reader needs.
type Superblock struct {
	Version uint8
	Sizes   binary.Sizes

	// Location is where the signature was found; Base is the address all
	// other addresses are relative to.
	Location int64
	Base     uint64
	EOF      uint64

	// Root is the root group's object header address.
	Root uint64

	// Cached symbol table of the root group (versions 0 and 1 only);
	// Undefined when the scratch pad is empty.
	RootBTree uint64
	RootHeap  uint64
}

// Read searches r for the signature and decodes the superblock found there.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, len(Signature))
	for off := int64(0); off < maxSearchBytes; off = nextLocation(off) {
		if _, err := r.ReadAt(sig, off); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if bytes.Equal(sig, Signature) {
			return decodeAt(r, off)
		}
	}
	return nil, ErrSignature
}

func nextLocation(off int64) int64 {
	if off == 0 {
		return 512
	}
	return off * 2
}

func decodeAt(r io.ReaderAt, off int64) (*Superblock, error) {
	// Large enough for any version with 8-byte offsets and lengths.
	buf, err := binary.ReadAtMost(r, uint64(off), 128)
	if err != nil {
		return nil, err
	}
	if len(buf) < 9 {
		return nil, ErrInvalid
	}

	version := buf[8]
	var sb *Superblock
	switch version {
	case 0, 1:
		sb, err = decodeV0(buf, version)
	case 2, 3:
		sb, err = decodeV2(buf, version)
	default:
		return nil, fmt.Errorf("%w: %d", ErrVersion, version)
	}
	if err != nil {
		return nil, err
	}
	sb.Location = off
	return sb, nil
}

// decodeV0 handles versions 0 and 1, which only differ by the indexed storage
// K field and its padding.
func decodeV0(buf []byte, version uint8) (*Superblock, error) {
	if len(buf) < 24 {
		return nil, ErrInvalid
	}
	sizes := binary.Sizes{Offset: int(buf[13]), Length: int(buf[14])}
	if err := sizes.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	d := binary.NewDecoder(buf, sizes)
	d.Seek(24)
	if version == 1 {
		d.Skip(4)
	}
	sb := &Superblock{Version: version, Sizes: sizes}
	sb.Base = d.Offset()
	d.Offset() // free-space info address
	sb.EOF = d.Offset()
	d.Offset() // driver info address

	// Root group symbol table entry.
	d.Offset() // link name offset
	sb.Root = d.Offset()
	cacheType := d.U32()
	d.Skip(4)
	scratch := d.Bytes(16)
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	sb.RootBTree, sb.RootHeap = binary.Undefined, binary.Undefined
	if cacheType == 1 {
		sd := binary.NewDecoder(scratch, sizes)
		sb.RootBTree = sd.Offset()
		sb.RootHeap = sd.Offset()
	}
	return sb, nil
}

func decodeV2(buf []byte, version uint8) (*Superblock, error) {
	sizes := binary.Sizes{Offset: int(buf[9]), Length: int(buf[10])}
	if err := sizes.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	n := size(sizes)
	if len(buf) < n {
		return nil, ErrInvalid
	}
	if err := binary.VerifyLookup3(buf[:n]); err != nil {
		return nil, fmt.Errorf("superblock: %w", err)
	}

	d := binary.NewDecoder(buf[:n], sizes)
	d.Seek(12)
	sb := &Superblock{
		Version:   version,
		Sizes:     sizes,
		RootBTree: binary.Undefined,
		RootHeap:  binary.Undefined,
	}
	sb.Base = d.Offset()
	d.Offset() // superblock extension address
	sb.EOF = d.Offset()
	sb.Root = d.Offset()
	return sb, d.Err()
}

// size is the encoded length of a version 2 or 3 superblock.
func size(s binary.Sizes) int {
	return len(Signature) + 4 + 4*s.Offset + 4
}
