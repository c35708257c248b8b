package vgabios

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/vgabios/internal/display"
	"pkt.systems/vgabios/internal/render"
	"pkt.systems/vgabios/internal/script"
)

// CallResult is the outcome of one scripted interrupt.
type CallResult = script.Result

// RunOptions configures Run.
type RunOptions struct {
	// Script is a .yaml, .yml or .lua call script.
	Script string
	Config Config
	// Out receives the rendered final screen. Nil skips rendering.
	Out io.Writer
	// ViewCols and ViewRows bound the rendered viewport; zero picks the
	// mode geometry for text and 80x25 for graphics previews.
	ViewCols int
	ViewRows int
	// SnapshotPath, when set, receives the final frame in protobuf form.
	SnapshotPath string
	// Live redraws Out after every call, sending only changed rows, and waits
	// StepDelay between calls.
	Live      bool
	StepDelay time.Duration
	Logger    pslog.Logger
}

// RunResult reports a finished script run.
type RunResult struct {
	State State
	Mode  ModeDescriptor
	Calls []CallResult
	Frame Frame
}

// Run executes a call script against a fresh in-memory BIOS and renders the
// final screen.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	colorMode, err := render.ParseColorMode(opts.Config.Render.Color)
	if err != nil {
		return nil, err
	}

	bios, err := NewFromConfig(opts.Config, logger)
	if err != nil {
		return nil, err
	}
	renderOpts := render.Options{
		Color:    colorMode,
		Resize:   opts.Config.Render.Resize,
		ViewCols: opts.ViewCols,
		ViewRows: opts.ViewRows,
	}
	scriptOpts := script.Options{Logger: logger.With("component", "script")}
	live := opts.Live && opts.Out != nil
	if live {
		scriptOpts.Observe = liveObserver(ctx, bios, opts.Out, renderOpts, opts.StepDelay, logger)
	}
	runner := script.New(bios.Dispatcher(), bios.Memory(), scriptOpts)
	if err := runner.RunFile(ctx, opts.Script); err != nil {
		return nil, err
	}

	frame, err := bios.Frame()
	if err != nil {
		return nil, err
	}
	res := &RunResult{
		State: bios.State(),
		Mode:  bios.Mode(),
		Calls: runner.Results(),
		Frame: frame,
	}
	failed := 0
	for _, c := range res.Calls {
		if c.Err != nil {
			failed++
		}
	}
	logger.Info("script finished", "script", opts.Script, "calls", len(res.Calls), "failed", failed, "mode", res.State.Mode.String())

	if opts.Out != nil && !live {
		if err := render.Snapshot(opts.Out, frame.Snapshot, renderOpts); err != nil {
			return nil, err
		}
	}
	if path := opts.Config.Render.PNG; path != "" && frame.Snapshot.Kind == display.KindGraphics {
		if err := writeFile(path, func(w io.Writer) error { return render.PNG(w, frame.Snapshot) }); err != nil {
			return nil, fmt.Errorf("write png: %w", err)
		}
		logger.Info("wrote png", "path", path)
	}
	if opts.SnapshotPath != "" {
		data := MarshalFrame(frame)
		if err := writeFile(opts.SnapshotPath, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("wrote snapshot", "path", opts.SnapshotPath, "bytes", len(data))
	}
	return res, nil
}

func liveObserver(ctx context.Context, bios *BIOS, w io.Writer, opts render.Options, delay time.Duration, logger pslog.Logger) func(script.Result) {
	var (
		prev    display.Snapshot
		started bool
	)
	return func(script.Result) {
		next, _ := bios.Snapshot()
		var err error
		if started {
			err = render.Diff(w, prev, next, opts)
		} else {
			err = render.Snapshot(w, next, opts)
			started = true
		}
		if err != nil {
			logger.Warn("live render failed", "error", err)
		}
		prev = next
		if delay <= 0 {
			return
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}

// View renders a saved frame.
func View(w io.Writer, data []byte, opts RenderOptions) (Frame, error) {
	frame, err := UnmarshalFrame(data)
	if err != nil {
		return Frame{}, err
	}
	return frame, render.Snapshot(w, frame.Snapshot, opts)
}

// RenderOptions controls terminal rendering.
type RenderOptions = render.Options

// ParseColorMode maps a configuration value to a colour encoding.
func ParseColorMode(s string) (render.ColorMode, error) {
	return render.ParseColorMode(s)
}

func writeFile(path string, fill func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
