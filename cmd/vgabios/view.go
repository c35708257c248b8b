package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/vgabios"
)

// NewViewCommand builds the view command.
func NewViewCommand(loader *vgabios.Loader) *cobra.Command {
	var (
		colorMode string
		resize    bool
		cols      int
		rows      int
	)

	cmd := &cobra.Command{
		Use:   "view <snapshot>",
		Short: "Render a saved protobuf frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("color") {
				cfg.Render.Color = colorMode
			}
			if cmd.Flags().Changed("resize") {
				cfg.Render.Resize = resize
			}
			mode, err := vgabios.ParseColorMode(cfg.Render.Color)
			if err != nil {
				return err
			}

			logger, closer, err := commandLogger(cmd, cfg.Log.File, "view")
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			viewCols, viewRows := viewport(cmd, cols, rows)
			frame, err := vgabios.View(cmd.OutOrStdout(), data, vgabios.RenderOptions{
				Color:    mode,
				Resize:   cfg.Render.Resize,
				ViewCols: viewCols,
				ViewRows: viewRows,
			})
			if err != nil {
				return err
			}
			logger.Debug("rendered frame", "path", args[0], "mode", fmt.Sprintf("0x%02X", frame.Mode), "name", frame.ModeName)
			_, err = fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&colorMode, "color", vgabios.DefaultColorMode, "color encoding: truecolor or 256")
	flags.BoolVar(&resize, "resize", false, "ask the terminal to resize to the frame geometry")
	flags.IntVar(&cols, "cols", 0, "viewport columns (default terminal width)")
	flags.IntVar(&rows, "rows", 0, "viewport rows (default terminal height)")

	return cmd
}
