package vgabios

import "pkt.systems/vgabios/internal/config"

// Config mirrors the vgabios configuration.
type Config = config.Config

// VideoConfig configures the emulated adapter.
type VideoConfig = config.VideoConfig

// RenderConfig configures terminal output.
type RenderConfig = config.RenderConfig

// LogConfig configures logging.
type LogConfig = config.LogConfig

// Loader wraps configuration loading via Viper.
type Loader = config.Loader

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = config.DefaultConfigDirName
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = config.DefaultConfigFileName
	// DefaultLogFileName is the default log file name.
	DefaultLogFileName = config.DefaultLogFileName

	// DefaultInitialMode is the mode a new BIOS starts in.
	DefaultInitialMode = config.DefaultInitialMode
	// DefaultMemoryKB is the default guest memory size.
	DefaultMemoryKB = config.DefaultMemoryKB
	// DefaultVideoMemoryKB is the video memory reported to VBE callers.
	DefaultVideoMemoryKB = config.DefaultVideoMemoryKB
	// DefaultColorMode is the default SGR colour encoding.
	DefaultColorMode = config.DefaultColorMode
)

// NewLoader returns a config loader with defaults wired.
func NewLoader() *config.Loader {
	return config.NewLoader()
}

// DefaultConfig returns default vgabios configuration.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// DefaultConfigDir returns the default config directory.
func DefaultConfigDir() string {
	return config.DefaultConfigDir()
}

// DefaultConfigPath returns the default config path.
func DefaultConfigPath() string {
	return config.DefaultConfigPath()
}

// DefaultLogPath returns the default log path.
func DefaultLogPath() string {
	return config.DefaultLogPath()
}
