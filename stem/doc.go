// Package stem loads, saves, validates and summarizes 4D-STEM datasets:
// four-dimensional arrays indexed (scan_x, scan_y, detector_x, detector_y).
//
// Files are dispatched by extension to a registered [Reader]. HDF5 files are
// read by a built-in reader that understands the layout [Save] writes
// (/4dstem_data/datacube plus an optional /metadata group) as well as files
// with a bare /datacube or any top-level 4-D dataset. DM3, DM4 and MIB files
// need a reader registered with [RegisterReader].
//
//	rec, err := stem.Load("scan.h5")
//	if err != nil {
//	    return err
//	}
//	info, err := stem.GetInfo(rec.Data)
//
// Lazy records read only the chunks a [Cube.Slice] touches:
//
//	rec, err := stem.Load("scan.h5", stem.WithLazy())
//	frame, err := rec.Data.Slice([]int{3, 5, 0, 0}, []int{1, 1, 256, 256})
package stem
