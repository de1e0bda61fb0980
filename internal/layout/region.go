package layout

func product(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// linear returns the row-major element index of idx in an array of dims.
func linear(dims, idx []uint64) uint64 {
	var n uint64
	for i, d := range dims {
		n = n*d + idx[i]
	}
	return n
}

// copyBox copies a box of shape count from src, an array of srcDims with the
// box at srcOff, into dst, an array of dstDims with the box at dstOff.
// srcBias is subtracted from every source byte offset, for sources that
// hold only a window of their array.
func copyBox(dst []byte, dstDims, dstOff []uint64, src []byte, srcDims, srcOff, count []uint64, es int, srcBias uint64) {
	rank := len(count)
	if rank == 0 {
		copy(dst[:es], src[:es])
		return
	}
	for _, c := range count {
		if c == 0 {
			return
		}
	}
	row := count[rank-1] * uint64(es)
	idx := make([]uint64, rank)
	s := make([]uint64, rank)
	d := make([]uint64, rank)
	for {
		for i := range idx {
			s[i] = srcOff[i] + idx[i]
			d[i] = dstOff[i] + idx[i]
		}
		so := linear(srcDims, s)*uint64(es) - srcBias
		do := linear(dstDims, d) * uint64(es)
		copy(dst[do:do+row], src[so:so+row])

		// advance every dimension but the last, odometer style
		i := rank - 2
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < count[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// extract returns the box [start, start+count) of a row-major array.
func extract(data []byte, dims, start, count []uint64, es int) []byte {
	out := make([]byte, product(count)*uint64(es))
	copyBox(out, count, make([]uint64, len(count)), data, dims, start, count, es, 0)
	return out
}

// overlap intersects a chunk at origin with shape chunk against the
// selection [start, start+count) clipped to dims. It reports false when they
// do not meet.
func overlap(origin, chunk, start, count, dims []uint64) (lo, hi []uint64, ok bool) {
	lo = make([]uint64, len(origin))
	hi = make([]uint64, len(origin))
	for i := range origin {
		lo[i] = max(origin[i], start[i])
		hi[i] = min(origin[i]+chunk[i], start[i]+count[i], dims[i])
		if lo[i] >= hi[i] {
			return nil, nil, false
		}
	}
	return lo, hi, true
}

// gridOrigins returns the origin of every chunk covering dims, row-major.
func gridOrigins(dims, chunk []uint64) [][]uint64 {
	rank := len(dims)
	counts := make([]uint64, rank)
	total := uint64(1)
	for i := range dims {
		counts[i] = (dims[i] + chunk[i] - 1) / chunk[i]
		total *= counts[i]
	}
	out := make([][]uint64, 0, total)
	for n := uint64(0); n < total; n++ {
		origin := make([]uint64, rank)
		rem := n
		for i := rank - 1; i >= 0; i-- {
			origin[i] = (rem % counts[i]) * chunk[i]
			rem /= counts[i]
		}
		out = append(out, origin)
	}
	return out
}
