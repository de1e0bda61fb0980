package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:           "stem4d",
		Short:         "Inspect, convert and reduce 4D-STEM datasets",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var l slog.Level
			if err := l.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: l})))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&level, "log-level", "info", "log level: debug, info, warn or error")
	cmd.AddCommand(newInfoCmd(), newTreeCmd(), newConvertCmd(), newVirtualCmd())
	return cmd
}
