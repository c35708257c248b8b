package main

import (
	"context"
	"fmt"
	"os"

	"pkt.systems/pslog"

	"pkt.systems/vgabios"
)

func main() {
	loader := vgabios.NewLoader()
	root := NewRootCommand(loader)
	// Stdout carries the rendered screen.
	logger := pslog.LoggerFromEnv(pslog.WithEnvWriter(os.Stderr))
	root.SetContext(pslog.ContextWithLogger(context.Background(), logger))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
