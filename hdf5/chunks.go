package hdf5

import "math"

// Chunk size targets of the h5py guess, in bytes.
const (
	chunkBase = 16 * 1024
	chunkMin  = 8 * 1024
	chunkMax  = 1024 * 1024
)

// GuessChunks picks a chunk shape for data of the given shape the way h5py
// does: the target chunk size grows with the dataset size between 8 KiB and
// 1 MiB, and dimensions are halved in turn until the chunk fits.
func GuessChunks(shape []uint64, elemSize int) []uint64 {
	if len(shape) == 0 {
		return nil
	}
	chunks := make([]float64, len(shape))
	for i, d := range shape {
		chunks[i] = float64(d)
		if d == 0 {
			chunks[i] = 1024
		}
	}

	prod := func() float64 {
		p := 1.0
		for _, c := range chunks {
			p *= c
		}
		return p
	}
	size := prod() * float64(elemSize)
	target := chunkBase * math.Pow(2, math.Log10(size/(1024*1024)))
	target = math.Min(math.Max(target, chunkMin), chunkMax)

	for idx := 0; ; idx++ {
		bytes := prod() * float64(elemSize)
		if (bytes < target || math.Abs(bytes-target)/target < 0.5) && bytes < chunkMax {
			break
		}
		if prod() == 1 {
			break
		}
		i := idx % len(chunks)
		chunks[i] = math.Ceil(chunks[i] / 2)
	}

	out := make([]uint64, len(chunks))
	for i, c := range chunks {
		out[i] = uint64(c)
		if shape[i] > 0 && out[i] > shape[i] {
			out[i] = shape[i]
		}
	}
	return out
}
