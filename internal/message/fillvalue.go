package message

import (
	"fmt"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
)

// Space allocation times.
const (
	AllocEarly       uint8 = 1
	AllocLate        uint8 = 2
	AllocIncremental uint8 = 3
)

// FillValue is a decoded fill value message. Value is nil when no fill value
// is defined, in which case readers use zero bytes.
type FillValue struct {
	AllocTime uint8
	WriteTime uint8
	Value     []byte
}

// ParseFillValue decodes a new-style fill value message.
func ParseFillValue(data []byte) (*FillValue, error) {
	d := binary.NewDecoder(data, binary.DefaultSizes)
	version := d.U8()
	fv := &FillValue{}
	switch version {
	case 1, 2:
		fv.AllocTime = d.U8()
		fv.WriteTime = d.U8()
		defined := d.U8() != 0
		if version == 1 || defined {
			n := int(d.U32())
			if defined && n > 0 {
				fv.Value = d.Bytes(n)
			}
		}
	case 3:
		flags := d.U8()
		fv.AllocTime = flags & 0x03
		fv.WriteTime = (flags >> 2) & 0x03
		if flags&0x20 != 0 {
			fv.Value = d.Bytes(int(d.U32()))
		}
	default:
		return nil, versionError("fill value", version)
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("fill value: %w", err)
	}
	return fv, nil
}

// ParseFillValueOld decodes the pre-1.6 fill value message, which is just a
// size and the value.
func ParseFillValueOld(data []byte) (*FillValue, error) {
	d := binary.NewDecoder(data, binary.DefaultSizes)
	n := int(d.U32())
	fv := &FillValue{Value: d.Bytes(n)}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("fill value: %w", err)
	}
	if n == 0 {
		fv.Value = nil
	}
	return fv, nil
}

// Encode returns a version 3 fill value message. Fill values are written
// only when set, which is how h5py creates datasets by default.
func (fv *FillValue) Encode() []byte {
	e := binary.NewEncoder(binary.DefaultSizes)
	e.U8(3)
	flags := fv.AllocTime&0x03 | (fv.WriteTime&0x03)<<2
	if fv.Value != nil {
		flags |= 0x20
	}
	e.U8(flags)
	if fv.Value != nil {
		e.U32(uint32(len(fv.Value)))
		e.Raw(fv.Value)
	}
	return e.Bytes()
}
