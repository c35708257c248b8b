package config

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = ".vgabios"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"
	// DefaultLogFileName is the default log file name.
	DefaultLogFileName = "vgabios.log"

	// DefaultInitialMode is the mode the adapter starts in, 80x25 colour text.
	DefaultInitialMode = 0x03
	// DefaultMemoryKB covers conventional memory and the high memory area.
	DefaultMemoryKB = 1088
	// DefaultVideoMemoryKB is the video memory reported by VBE function 0x00.
	DefaultVideoMemoryKB = 16384
	// DefaultColorMode is the default SGR colour encoding.
	DefaultColorMode = "truecolor"
)
