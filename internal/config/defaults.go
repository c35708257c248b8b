package config

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{
			InitialMode:   DefaultInitialMode,
			MemoryKB:      DefaultMemoryKB,
			VideoMemoryKB: DefaultVideoMemoryKB,
			VESA:          true,
		},
		Render: RenderConfig{
			Color: DefaultColorMode,
		},
	}
}
