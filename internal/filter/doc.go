// Package filter implements the HDF5 filter pipeline in both directions.
//
// # Supported Filters
//
//   - DEFLATE (ID 1): zlib streams via [Deflate], backed by
//     github.com/klauspost/compress/zlib.
//   - Shuffle (ID 2): byte transposition via [Shuffle]. Bytes past the last
//     whole element are left in place.
//   - Fletcher32 (ID 3): a trailing checksum via [Fletcher32].
//   - LZF (ID 32000): the fast LZ77 codec registered by h5py, via [LZF].
//
// SZIP, N-bit and scale-offset are recognised by name so error messages can
// say which filter is missing, but they cannot be applied.
//
// # Filter Mask
//
// Each stored chunk carries a mask; bit i set means filter i was not
// applied to that chunk. [Pipeline.Encode] sets the bit when an optional
// filter fails or fails to shrink the data, and [Pipeline.Decode] skips
// masked filters while undoing the rest in reverse order.
//
//	p, err := filter.NewPipeline(msg, elemSize)
//	stored, mask, err := p.Encode(raw)
//	raw, err = p.Decode(stored, mask)
package filter
