package layout

import (
	"fmt"
	"io"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/binary"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/internal/btree"
)

// readFixedArray decodes a fixed array chunk index ("FAHD"/"FADB"). Entry i
// belongs to the chunk at origins[i].
func readFixedArray(r io.ReaderAt, addr uint64, sizes binary.Sizes, origins [][]uint64, chunkBytes uint64) ([]btree.Chunk, error) {
	headSize := 8 + sizes.Length + sizes.Offset + 4
	head, err := binary.ReadAt(r, addr, headSize)
	if err != nil {
		return nil, fmt.Errorf("fixed array header: %w", err)
	}
	if string(head[:4]) != "FAHD" {
		return nil, fmt.Errorf("fixed array header at %#x: signature %q", addr, head[:4])
	}
	if err := binary.VerifyLookup3(head); err != nil {
		return nil, fmt.Errorf("fixed array header: %w", err)
	}
	d := binary.NewDecoder(head[4:], sizes)
	if v := d.U8(); v != 0 {
		return nil, fmt.Errorf("fixed array version %d", v)
	}
	filtered := d.U8() == 1
	entrySize := int(d.U8())
	pageBits := d.U8()
	count := d.Length()
	blockAddr := d.Offset()
	if count != uint64(len(origins)) {
		return nil, fmt.Errorf("fixed array holds %d entries for %d chunks", count, len(origins))
	}

	pageLen := uint64(1) << pageBits
	prefix := 6 + sizes.Offset
	var entries []byte
	if count <= pageLen {
		block, err := binary.ReadAt(r, blockAddr, prefix+int(count)*entrySize+4)
		if err != nil {
			return nil, fmt.Errorf("fixed array data block: %w", err)
		}
		if string(block[:4]) != "FADB" {
			return nil, fmt.Errorf("fixed array data block at %#x: signature %q", blockAddr, block[:4])
		}
		if err := binary.VerifyLookup3(block); err != nil {
			return nil, fmt.Errorf("fixed array data block: %w", err)
		}
		entries = block[prefix : len(block)-4]
	} else {
		pages := (count + pageLen - 1) / pageLen
		bitmap := int((pages + 7) / 8)
		block, err := binary.ReadAt(r, blockAddr, prefix+bitmap+4)
		if err != nil {
			return nil, fmt.Errorf("fixed array data block: %w", err)
		}
		if err := binary.VerifyLookup3(block); err != nil {
			return nil, fmt.Errorf("fixed array data block: %w", err)
		}
		at := blockAddr + uint64(len(block))
		for p := uint64(0); p < pages; p++ {
			n := min(pageLen, count-p*pageLen)
			size := int(n)*entrySize + 4
			if block[prefix+int(p/8)]&(0x80>>(p%8)) == 0 {
				// uninitialised page: every chunk in it is unallocated
				entries = append(entries, undefinedEntries(int(n), entrySize, sizes)...)
				at += uint64(size)
				continue
			}
			page, err := binary.ReadAt(r, at, size)
			if err != nil {
				return nil, fmt.Errorf("fixed array page %d: %w", p, err)
			}
			if err := binary.VerifyLookup3(page); err != nil {
				return nil, fmt.Errorf("fixed array page %d: %w", p, err)
			}
			entries = append(entries, page[:len(page)-4]...)
			at += uint64(size)
		}
	}

	var out []btree.Chunk
	d = binary.NewDecoder(entries, sizes)
	for i := range origins {
		c := btree.Chunk{Offset: origins[i], Address: d.Offset(), Size: uint32(chunkBytes)}
		if filtered {
			c.Size = uint32(d.Uint(entrySize - sizes.Offset - 4))
			c.FilterMask = d.U32()
		}
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("fixed array entry %d: %w", i, err)
		}
		if c.Address != binary.Undefined {
			out = append(out, c)
		}
	}
	return out, nil
}

func undefinedEntries(n, entrySize int, sizes binary.Sizes) []byte {
	e := binary.NewEncoder(sizes)
	for i := 0; i < n; i++ {
		e.Offset(binary.Undefined)
		e.Zero(entrySize - sizes.Offset)
	}
	return e.Bytes()
}
