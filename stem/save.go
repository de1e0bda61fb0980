package stem

import (
	"fmt"
	"strings"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

// Compression selects the filter applied to the saved datacube.
type Compression int

const (
	CompressionGzip Compression = iota
	CompressionLZF
	CompressionSZIP
	CompressionNone
)

var compressionNames = [...]string{
	CompressionGzip: "gzip",
	CompressionLZF:  "lzf",
	CompressionSZIP: "szip",
	CompressionNone: "none",
}

func (c Compression) String() string {
	if c < 0 || int(c) >= len(compressionNames) {
		return fmt.Sprintf("compression(%d)", int(c))
	}
	return compressionNames[c]
}

// ParseCompression parses gzip, lzf, szip or none.
func ParseCompression(s string) (Compression, error) {
	for c, name := range compressionNames {
		if strings.EqualFold(s, name) {
			return Compression(c), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
}

// DefaultCompressionLevel is the gzip level h5py uses when none is given.
const DefaultCompressionLevel = 4

// SaveOption configures Save.
type SaveOption func(*saveOptions)

type saveOptions struct {
	metadata    Metadata
	compression Compression
	level       int
	chunks      []int
}

// WithMetadata stores m in the /metadata group.
func WithMetadata(m Metadata) SaveOption {
	return func(o *saveOptions) { o.metadata = m }
}

// WithCompression selects the datacube filter. The default is gzip.
func WithCompression(c Compression) SaveOption {
	return func(o *saveOptions) { o.compression = c }
}

// WithCompressionLevel sets the gzip level, 0-9.
func WithCompressionLevel(level int) SaveOption {
	return func(o *saveOptions) { o.level = level }
}

// WithChunks sets the datacube chunk shape. By default it is guessed the
// way h5py does.
func WithChunks(dims ...int) SaveOption {
	return func(o *saveOptions) { o.chunks = dims }
}

// Save writes data to an HDF5 file at path as /4dstem_data/datacube,
// truncating any existing file. The datacube is chunked, shuffled and
// compressed, and carries "shape" and "dtype" attributes.
//
// Metadata strings, bools and numbers become attributes of /metadata;
// *Array values and numeric slices become datasets in it. Values of any
// other type are skipped without error.
//
// Invalid input is rejected before the file is created. A failure while
// writing leaves a partial file behind.
func Save(data *Array, path string, opts ...SaveOption) (err error) {
	o := &saveOptions{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(o)
	}
	if data == nil {
		return ErrNotArray
	}
	if err := checkCube(data); err != nil {
		return err
	}
	dsOpts, err := o.datasetOptions(data)
	if err != nil {
		return err
	}

	f, err := hdf5.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	g, err := f.Root().CreateGroup("4dstem_data")
	if err != nil {
		return err
	}
	if _, err := g.CreateDataset("datacube", data.Data(), data.shape.uint64s(), dsOpts...); err != nil {
		return err
	}
	if len(o.metadata) == 0 {
		return nil
	}
	mg, err := f.Root().CreateGroup(metadataGroup)
	if err != nil {
		return err
	}
	return writeMetadata(mg, o.metadata)
}

func (o *saveOptions) datasetOptions(data *Array) ([]hdf5.DatasetOption, error) {
	shape := make([]int64, len(data.shape))
	for i, d := range data.shape {
		shape[i] = int64(d)
	}
	opts := []hdf5.DatasetOption{
		hdf5.WithShuffle(),
		hdf5.WithAttribute("shape", shape),
		hdf5.WithAttribute("dtype", data.dtype.String()),
	}
	switch o.compression {
	case CompressionGzip:
		if o.level < 0 || o.level > 9 {
			return nil, fmt.Errorf("%w: gzip level %d", ErrUnsupportedCompression, o.level)
		}
		opts = append(opts, hdf5.WithCompression(o.level))
	case CompressionLZF:
		opts = append(opts, hdf5.WithLZF())
	case CompressionNone:
	case CompressionSZIP:
		return nil, fmt.Errorf("%w: szip has no pure Go encoder", ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, o.compression)
	}
	if o.chunks != nil {
		if len(o.chunks) != len(data.shape) {
			return nil, &ShapeError{Shape: Shape(o.chunks).Clone(), Err: fmt.Errorf("%w: chunk rank", ErrShapeMismatch)}
		}
		for _, c := range o.chunks {
			if c <= 0 {
				return nil, &ShapeError{Shape: Shape(o.chunks).Clone(), Err: fmt.Errorf("%w: chunk dimensions must be positive", ErrShapeMismatch)}
			}
		}
		opts = append(opts, hdf5.WithChunks(Shape(o.chunks).uint64s()...))
	}
	return opts, nil
}

func writeMetadata(g *hdf5.Group, m Metadata) error {
	for _, k := range m.Keys() {
		switch v := m[k].(type) {
		case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			if err := g.SetAttr(k, v); err != nil {
				return err
			}
		case *Array:
			if v == nil {
				continue
			}
			if _, err := g.CreateDataset(k, v.Data(), v.shape.uint64s()); err != nil {
				return err
			}
		case []int8, []int16, []int32, []int64, []uint8, []uint16, []uint32, []uint64, []float32, []float64:
			if _, err := g.CreateDataset(k, v, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
