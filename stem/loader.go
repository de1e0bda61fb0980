package stem

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Reader turns a file into a Record.
type Reader interface {
	Read(path string) (*Record, error)
}

// LazyReader is implemented by readers that can defer reading the data
// until it is sliced.
type LazyReader interface {
	ReadLazy(path string) (*Record, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(path string) (*Record, error)

func (fn ReaderFunc) Read(path string) (*Record, error) { return fn(path) }

// Option configures Load, Validate and GetInfo.
type Option func(*options)

type options struct {
	lazy   bool
	logger *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLazy requests a record whose Data reads from disk on demand.
func WithLazy() Option {
	return func(o *options) { o.lazy = true }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Loader dispatches files to readers by format.
type Loader struct {
	mu      sync.RWMutex
	readers map[Format]Reader
}

// NewLoader returns a Loader with the built-in HDF5 reader registered.
func NewLoader() *Loader {
	l := &Loader{readers: make(map[Format]Reader)}
	l.Register(FormatHDF5, HDF5Reader{})
	return l
}

// DefaultLoader serves the package-level Load and RegisterReader.
var DefaultLoader = NewLoader()

// Register installs r for format f, replacing any previous reader.
func (l *Loader) Register(f Format, r Reader) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readers[f] = r
}

func (l *Loader) reader(f Format) (Reader, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.readers[f]
	return r, ok
}

// RegisterReader installs r in DefaultLoader. Reader packages for DM3, DM4
// and MIB call it from init.
func RegisterReader(f Format, r Reader) { DefaultLoader.Register(f, r) }

// Load reads path with DefaultLoader.
func Load(path string, opts ...Option) (*Record, error) {
	return DefaultLoader.Load(path, opts...)
}

// Load reads a 4D-STEM dataset. It fails with ErrNotFound when path does not
// exist, a *FormatError for unrecognized extensions and a
// *MissingReaderError when the format has no reader.
func (l *Loader) Load(path string, opts ...Option) (*Record, error) {
	o := newOptions(opts)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, &FormatError{Ext: filepath.Ext(path)}
	}
	r, ok := l.reader(format)
	if !ok {
		return nil, &MissingReaderError{Format: format}
	}
	o.logger.Debug("loading dataset", "path", path, "format", format, "lazy", o.lazy)

	var (
		rec *Record
		err error
	)
	if o.lazy {
		lr, ok := r.(LazyReader)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLazyUnavailable, format)
		}
		rec, err = lr.ReadLazy(path)
	} else {
		rec, err = r.Read(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %s reader returned no record", path, format)
	}
	rec.Path = path
	rec.Format = format
	if err := rec.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	o.logger.Debug("loaded dataset", "path", path, "shape", rec.Data.Shape(), "dtype", rec.Data.DType())
	return rec, nil
}
