package hdf5

// DatasetOption configures dataset creation.
type DatasetOption func(*datasetOptions)

type attrDef struct {
	name  string
	value any
}

type datasetOptions struct {
	chunks     []uint64
	deflate    int // 0 = none
	lzf        bool
	shuffle    bool
	fletcher32 bool
	attributes []attrDef
}

func (o *datasetOptions) filtered() bool {
	return o.deflate > 0 || o.lzf || o.shuffle || o.fletcher32
}

// WithChunks sets the chunk dimensions. Filtered datasets without explicit
// chunks get GuessChunks.
func WithChunks(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) {
		o.chunks = dims
	}
}

// WithCompression enables deflate at level 1-9. Zero disables it.
func WithCompression(level int) DatasetOption {
	return func(o *datasetOptions) {
		if level >= 0 && level <= 9 {
			o.deflate = level
		}
	}
}

// WithLZF enables the LZF filter h5py registers as filter 32000. It
// replaces deflate if both are given.
func WithLZF() DatasetOption {
	return func(o *datasetOptions) {
		o.lzf = true
	}
}

// WithShuffle enables the byte shuffle filter, which runs before
// compression.
func WithShuffle() DatasetOption {
	return func(o *datasetOptions) {
		o.shuffle = true
	}
}

// WithFletcher32 appends a Fletcher32 checksum to every chunk.
func WithFletcher32() DatasetOption {
	return func(o *datasetOptions) {
		o.fletcher32 = true
	}
}

// WithAttribute attaches an attribute to the new dataset. See
// Group.SetAttr for the accepted values.
func WithAttribute(name string, value any) DatasetOption {
	return func(o *datasetOptions) {
		o.attributes = append(o.attributes, attrDef{name: name, value: value})
	}
}
