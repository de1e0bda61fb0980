package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/stem"
)

func newInfoCmd() *cobra.Command {
	var lazy, asJSON bool
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Print the shape, type and statistics of a dataset",
		Long: "Print the shape, type and statistics of a dataset.\n\n" +
			"With --lazy only the header is read and statistics are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []stem.Option
			if lazy {
				opts = append(opts, stem.WithLazy())
			}
			rec, err := stem.Load(args[0], opts...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a, ok := rec.Data.(*stem.Array)
			if !ok {
				return printHeader(out, rec, asJSON)
			}
			info, err := stem.GetInfo(a)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, info)
			}
			printRecord(out, rec)
			fmt.Fprintf(out, "size:           %.3f MB\n", info.SizeMB)
			fmt.Fprintf(out, "total counts:   %v\n", info.Total)
			fmt.Fprintf(out, "mean counts:    %.6g\n", info.Mean)
			fmt.Fprintf(out, "std counts:     %.6g\n", info.Std)
			fmt.Fprintf(out, "max counts:     %v\n", info.Max)
			fmt.Fprintf(out, "min counts:     %v\n", info.Min)
			for _, w := range info.Warnings {
				fmt.Fprintf(out, "warning:        %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&lazy, "lazy", false, "read only the header")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printRecord(out io.Writer, rec *stem.Record) {
	fmt.Fprintf(out, "path:           %s\n", rec.Path)
	fmt.Fprintf(out, "format:         %s\n", rec.Format)
	fmt.Fprintf(out, "shape:          %v\n", rec.Data.Shape())
	fmt.Fprintf(out, "dtype:          %s\n", rec.Data.DType())
	fmt.Fprintf(out, "scan shape:     %v\n", rec.ScanShape())
	fmt.Fprintf(out, "detector shape: %v\n", rec.DetectorShape())
	if v, ok := rec.Calibration.RealPixelSize.Get(); ok {
		fmt.Fprintf(out, "R pixel size:   %g\n", v)
	}
	if v, ok := rec.Calibration.ReciprocalPixelSize.Get(); ok {
		fmt.Fprintf(out, "Q pixel size:   %g\n", v)
	}
	for _, k := range rec.Metadata.Keys() {
		fmt.Fprintf(out, "metadata:       %s = %v\n", k, rec.Metadata[k])
	}
}

func printHeader(out io.Writer, rec *stem.Record, asJSON bool) error {
	if !asJSON {
		printRecord(out, rec)
		return nil
	}
	return writeJSON(out, map[string]any{
		"path":           rec.Path,
		"format":         rec.Format.String(),
		"shape":          rec.Data.Shape(),
		"dtype":          rec.Data.DType().String(),
		"scan_shape":     rec.ScanShape(),
		"detector_shape": rec.DetectorShape(),
		"calibration":    rec.Calibration.Map(),
	})
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
