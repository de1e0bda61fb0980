package stem

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned by Load for paths that do not exist. It
	// matches fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("file not found: %w", fs.ErrNotExist)

	ErrUnsupportedFormat      = errors.New("unsupported file format")
	ErrMissingReader          = errors.New("no reader registered")
	ErrLazyUnavailable        = errors.New("lazy loading is not available for this format")
	ErrNoDatacube             = errors.New("no 4D dataset found")
	ErrUnsupportedCompression = errors.New("unsupported compression")

	ErrNotArray        = errors.New("data must be a *stem.Array")
	ErrRank            = errors.New("expected 4D data")
	ErrEmpty           = errors.New("data array is empty")
	ErrShapeMismatch   = errors.New("data length does not match shape")
	ErrUnsupportedType = errors.New("unsupported element type")
)

// FormatError reports a file extension outside the recognized set.
type FormatError struct {
	Ext string
}

func (e *FormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format: %s", ext)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// ShapeError reports data whose shape is unacceptable. Err is one of
// ErrRank, ErrEmpty or ErrShapeMismatch.
type ShapeError struct {
	Shape Shape
	Err   error
}

func (e *ShapeError) Error() string {
	if errors.Is(e.Err, ErrRank) {
		return fmt.Sprintf("%v, got %dD (shape %v)", e.Err, len(e.Shape), e.Shape)
	}
	return fmt.Sprintf("%v (shape %v)", e.Err, e.Shape)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// MissingReaderError is returned when a recognized format has no reader
// registered.
type MissingReaderError struct {
	Format Format
}

func (e *MissingReaderError) Error() string {
	return fmt.Sprintf("%s files need an external reader: register one with stem.RegisterReader(stem.%s, r), "+
		"typically by importing a reader package for its side effects", e.Format, e.Format.constName())
}

func (e *MissingReaderError) Unwrap() error { return ErrMissingReader }

// WarningCode classifies a data-quality warning.
type WarningCode int

const (
	WarnNonFinite WarningCode = iota + 1
)

func (c WarningCode) String() string {
	switch c {
	case WarnNonFinite:
		return "non-finite"
	}
	return fmt.Sprintf("warning(%d)", int(c))
}

// Warning is a non-fatal data-quality finding.
type Warning struct {
	Code  WarningCode
	Count int
}

func (w Warning) String() string {
	switch w.Code {
	case WarnNonFinite:
		return fmt.Sprintf("data contains %d non-finite values", w.Count)
	}
	return w.Code.String()
}
