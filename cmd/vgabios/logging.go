package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openLogger(path string) (pslog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := pslog.LoggerFromEnv(pslog.WithEnvWriter(file))
	return logger, file, nil
}

// commandLogger returns the logger for cmd: a file logger when path is set,
// otherwise the one installed in the command context.
func commandLogger(cmd *cobra.Command, path, component string) (pslog.Logger, io.Closer, error) {
	if path == "" {
		return pslog.Ctx(cmd.Context()).With("component", component), nopCloser{}, nil
	}
	logger, closer, err := openLogger(path)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With("component", component)
	cmd.SetContext(pslog.ContextWithLogger(cmd.Context(), logger))
	return logger, closer, nil
}
