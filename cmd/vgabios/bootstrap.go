package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"pkt.systems/vgabios"
)

// NewBootstrapCommand builds the bootstrap command.
func NewBootstrapCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Write a default vgabios config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := pslog.Ctx(cmd.Context()).With("component", "bootstrap")
			written, err := vgabios.Bootstrap(cmd.Context(), vgabios.DefaultConfig(), path, logger)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), written)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "config path (default "+vgabios.DefaultConfigPath()+")")
	return cmd
}
