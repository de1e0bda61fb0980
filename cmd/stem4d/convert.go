package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/stem"
)

func newConvertCmd() *cobra.Command {
	var (
		compression string
		level       int
	)
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Load a dataset and save it as HDF5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := stem.ParseCompression(compression)
			if err != nil {
				return err
			}
			rec, err := stem.Load(args[0])
			if err != nil {
				return err
			}
			a, ok := rec.Data.(*stem.Array)
			if !ok {
				return fmt.Errorf("%s: %w", args[0], stem.ErrNotArray)
			}
			if _, err := stem.Validate(a); err != nil {
				return err
			}
			err = stem.Save(a, args[1],
				stem.WithMetadata(rec.Metadata),
				stem.WithCompression(c),
				stem.WithCompressionLevel(level))
			if err != nil {
				return err
			}
			slog.Info("converted", "in", args[0], "out", args[1], "shape", a.Shape(), "compression", c)
			return nil
		},
	}
	cmd.Flags().StringVar(&compression, "compression", "gzip", "datacube compression: gzip, lzf or none")
	cmd.Flags().IntVar(&level, "level", stem.DefaultCompressionLevel, "gzip level, 0-9")
	return cmd
}
