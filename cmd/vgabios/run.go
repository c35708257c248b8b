package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/prettyx"

	"pkt.systems/vgabios"
)

type callSummary struct {
	Name  string `json:"name,omitempty"`
	AX    string `json:"ax"`
	BX    string `json:"bx"`
	CX    string `json:"cx"`
	DX    string `json:"dx"`
	Carry bool   `json:"carry,omitempty"`
	Error string `json:"error,omitempty"`
}

type runSummary struct {
	Mode  vgabios.ModeDescriptor `json:"mode"`
	State vgabios.State          `json:"state"`
	Calls []callSummary          `json:"calls"`
}

// NewRunCommand builds the run command.
func NewRunCommand(loader *vgabios.Loader) *cobra.Command {
	var (
		printState   bool
		snapshotPath string
		pngPath      string
		colorMode    string
		resize       bool
		live         bool
		delay        time.Duration
		cols         int
		rows         int
	)

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an INT 10h call script (.yaml or .lua) and render the screen",
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
			if cmd.Flags().Changed("png") {
				cfg.Render.PNG = pngPath
			}

			logger, closer, err := commandLogger(cmd, cfg.Log.File, "run")
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()

			var out io.Writer = cmd.OutOrStdout()
			if printState {
				out = nil
			}
			viewCols, viewRows := viewport(cmd, cols, rows)
			res, err := vgabios.Run(cmd.Context(), vgabios.RunOptions{
				Script:       args[0],
				Config:       cfg,
				Out:          out,
				ViewCols:     viewCols,
				ViewRows:     viewRows,
				SnapshotPath: snapshotPath,
				Live:         live,
				StepDelay:    delay,
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			if !printState {
				_, err := fmt.Fprintln(cmd.OutOrStdout())
				return err
			}
			return printRunSummary(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&printState, "state", false, "print the final video state as JSON instead of the screen")
	flags.StringVar(&snapshotPath, "snapshot", "", "write the final screen as a protobuf frame")
	flags.StringVar(&pngPath, "png", "", "write graphics-mode screens as PNG")
	flags.StringVar(&colorMode, "color", vgabios.DefaultColorMode, "color encoding: truecolor or 256")
	flags.BoolVar(&resize, "resize", false, "ask the terminal to resize to the mode geometry")
	flags.BoolVar(&live, "live", false, "redraw after every call")
	flags.DurationVar(&delay, "delay", 0, "pause between calls in live mode")
	flags.IntVar(&cols, "cols", 0, "viewport columns (default terminal width)")
	flags.IntVar(&rows, "rows", 0, "viewport rows (default terminal height)")

	return cmd
}

// viewport picks explicit flag values, then the size of stdout when it is a
// terminal. Zero lets the renderer choose.
func viewport(cmd *cobra.Command, cols, rows int) (int, int) {
	if cols > 0 && rows > 0 {
		return cols, rows
	}
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return cols, rows
	}
	w, h, err := term.GetSize(int(file.Fd()))
	if err != nil || w <= 0 || h <= 1 {
		return cols, rows
	}
	if cols <= 0 {
		cols = w
	}
	if rows <= 0 {
		// Leave a line for the shell prompt.
		rows = h - 1
	}
	return cols, rows
}

func printRunSummary(w io.Writer, res *vgabios.RunResult) error {
	summary := runSummary{Mode: res.Mode, State: res.State, Calls: make([]callSummary, 0, len(res.Calls))}
	for _, c := range res.Calls {
		cs := callSummary{
			Name:  c.Name,
			AX:    fmt.Sprintf("0x%04X", c.Out.Reg16(vgabios.AX)),
			BX:    fmt.Sprintf("0x%04X", c.Out.Reg16(vgabios.BX)),
			CX:    fmt.Sprintf("0x%04X", c.Out.Reg16(vgabios.CX)),
			DX:    fmt.Sprintf("0x%04X", c.Out.Reg16(vgabios.DX)),
			Carry: c.Out.Carry(),
		}
		if c.Err != nil {
			cs.Error = c.Err.Error()
		}
		summary.Calls = append(summary.Calls, cs)
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return prettyx.PrettyTo(w, data, prettyx.DefaultOptions)
}
