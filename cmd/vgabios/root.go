package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/vgabios"
)

// NewRootCommand builds the root CLI command.
func NewRootCommand(loader *vgabios.Loader) *cobra.Command {
	var configFile string
	var logFile string

	cmd := &cobra.Command{
		Use:           "vgabios",
		Short:         "VGA/VBE video BIOS emulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
			return loader.Viper().BindPFlag("log.file", cmd.Root().PersistentFlags().Lookup("log-file"))
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(NewRunCommand(loader))
	cmd.AddCommand(NewViewCommand(loader))
	cmd.AddCommand(NewModesCommand())
	cmd.AddCommand(NewBootstrapCommand())

	return cmd
}
