package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NU-MSE-LECTURES/465-Computational-Microscopy-2026/hdf5"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the groups, datasets and attributes of an HDF5 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := hdf5.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "superblock version %d\n", f.Version())
			return hdf5.Walk(f.Root(), func(p string, obj any, err error) error {
				indent := strings.Repeat("  ", depth(p))
				switch o := obj.(type) {
				case *hdf5.Group:
					fmt.Fprintf(out, "%s%s\n", indent, strings.TrimSuffix(p, "/")+"/")
					printAttrs(out, indent, o.Attrs, o.Attr)
				case *hdf5.Dataset:
					fmt.Fprintf(out, "%s%s %s\n", indent, p, describe(o))
					printAttrs(out, indent, o.Attrs, o.Attr)
				default:
					fmt.Fprintf(out, "%s%s ERROR: %v\n", indent, p, err)
				}
				return nil
			})
		},
	}
}

func depth(p string) int {
	return len(hdf5.SplitPath(p))
}

func describe(ds *hdf5.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v %s %s", ds.Shape(), ds.TypeName(), ds.LayoutClass())
	if c := ds.ChunkShape(); c != nil {
		fmt.Fprintf(&b, " chunks=%v", c)
	}
	if fs := ds.Filters(); len(fs) > 0 {
		fmt.Fprintf(&b, " filters=%s", strings.Join(fs, ","))
	}
	return b.String()
}

func printAttrs(out io.Writer, indent string, names func() ([]string, error), get func(string) (*hdf5.Attribute, error)) {
	list, err := names()
	if err != nil {
		fmt.Fprintf(out, "%s  @ ERROR: %v\n", indent, err)
		return
	}
	for _, name := range list {
		a, err := get(name)
		var v any
		if err == nil {
			v, err = a.Value()
		}
		if err != nil {
			fmt.Fprintf(out, "%s  @%s ERROR: %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(out, "%s  @%s = %v\n", indent, name, v)
	}
}
