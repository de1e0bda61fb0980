package stem

import (
	"path/filepath"
	"strings"
)

// Format is a recognized dataset file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatHDF5
	FormatDM3
	FormatDM4
	FormatMIB
)

var formatExts = map[string]Format{
	".h5":   FormatHDF5,
	".hdf5": FormatHDF5,
	".dm3":  FormatDM3,
	".dm4":  FormatDM4,
	".mib":  FormatMIB,
}

func (f Format) String() string {
	switch f {
	case FormatHDF5:
		return "HDF5"
	case FormatDM3:
		return "DM3"
	case FormatDM4:
		return "DM4"
	case FormatMIB:
		return "MIB"
	}
	return "unknown"
}

func (f Format) constName() string {
	if f == FormatUnknown {
		return "FormatUnknown"
	}
	return "Format" + f.String()
}

// DetectFormat maps the extension of path, case-insensitively, to a Format.
func DetectFormat(path string) Format {
	return formatExts[strings.ToLower(filepath.Ext(path))]
}
