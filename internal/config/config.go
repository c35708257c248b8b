package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for vgabios.
type Config struct {
	Video  VideoConfig  `mapstructure:"video" yaml:"video"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// VideoConfig configures the emulated adapter.
type VideoConfig struct {
	InitialMode int `mapstructure:"initial_mode" yaml:"initial_mode"`
	// MemoryKB sizes the guest memory that block calls read and write.
	MemoryKB int `mapstructure:"memory_kb" yaml:"memory_kb"`
	// VideoMemoryKB is the video memory reported to VBE callers.
	VideoMemoryKB int  `mapstructure:"video_memory_kb" yaml:"video_memory_kb"`
	VESA          bool `mapstructure:"vesa" yaml:"vesa"`
}

// RenderConfig configures terminal output.
type RenderConfig struct {
	Color  string `mapstructure:"color" yaml:"color"`
	Resize bool   `mapstructure:"resize" yaml:"resize"`
	PNG    string `mapstructure:"png" yaml:"png,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// File routes logs to a file instead of stderr.
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// Loader wraps Viper configuration loading for vgabios.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader initializes a Loader with standard defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("VGABIOS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/vgabios")
	v.AddConfigPath("$HOME/" + DefaultConfigDirName)

	setDefaults(v, DefaultConfig())
	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("video.initial_mode", cfg.Video.InitialMode)
	v.SetDefault("video.memory_kb", cfg.Video.MemoryKB)
	v.SetDefault("video.video_memory_kb", cfg.Video.VideoMemoryKB)
	v.SetDefault("video.vesa", cfg.Video.VESA)
	v.SetDefault("render.color", cfg.Render.Color)
	v.SetDefault("render.resize", cfg.Render.Resize)
	v.SetDefault("render.png", cfg.Render.PNG)
	v.SetDefault("log.file", cfg.Log.File)
}

// Viper exposes the underlying Viper instance for flag binding and defaults.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = strings.TrimSpace(path)
}

// ReadInConfig reads configuration from file if available.
func (l *Loader) ReadInConfig() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration and unmarshals it into a Config struct.
func (l *Loader) Load() (Config, error) {
	if err := l.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
