// Command stem4d inspects, converts and reduces 4D-STEM datasets.
//
//	stem4d info scan.h5
//	stem4d tree scan.h5
//	stem4d convert scan.h5 small.h5 --compression lzf
//	stem4d virtual scan.h5 images.h5 --kind df
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
