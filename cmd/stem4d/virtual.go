package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/stem"
	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/virtual"
)

var reductions = map[string]func(stem.Cube) (*mat.Dense, error){
	"bf":   virtual.BrightField,
	"df":   virtual.DarkField,
	"mean": virtual.MeanPattern,
	"max":  virtual.MaxPattern,
}

func newVirtualCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "virtual IN OUT",
		Short: "Compute a virtual image or pattern and save it as /virtual/<kind>",
		Long: "Compute a virtual image or pattern and save it as /virtual/<kind>.\n\n" +
			"bf and df integrate the default bright field disk and dark field annulus; " +
			"mean and max reduce the diffraction patterns over the scan.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reduce, ok := reductions[kind]
			if !ok {
				return fmt.Errorf("unknown --kind %q: want bf, df, mean or max", kind)
			}
			rec, err := stem.Load(args[0], stem.WithLazy())
			if err != nil {
				return err
			}
			img, err := reduce(rec.Data)
			if err != nil {
				return err
			}
			if err := writeImage(args[1], kind, args[0], img, rec); err != nil {
				return err
			}
			slog.Info("wrote virtual image", "kind", kind, "out", args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "bf", "bf, df, mean or max")
	return cmd
}

func writeImage(path, kind, source string, img *mat.Dense, rec *stem.Record) (err error) {
	f, err := hdf5.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	g, err := f.Root().CreateGroup("virtual")
	if err != nil {
		return err
	}
	r, c := img.Dims()
	opts := []hdf5.DatasetOption{
		hdf5.WithAttribute("source", source),
		hdf5.WithAttribute("kind", kind),
	}
	if kind == "bf" || kind == "df" {
		geo := virtual.DefaultGeometry(rec.DetectorShape())
		opts = append(opts,
			hdf5.WithAttribute("center", []int64{int64(geo.Center.Row), int64(geo.Center.Col)}),
			hdf5.WithAttribute("radius", geo.Radius))
	}
	_, err = g.CreateDataset(kind, mat.DenseCopyOf(img).RawMatrix().Data, []uint64{uint64(r), uint64(c)}, opts...)
	return err
}
