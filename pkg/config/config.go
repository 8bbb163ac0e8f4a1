// Package config defines core configuration types for pdfobjedit.
// These types are pure data structures; loading and merging lives in
// internal/configloader.
package config

import (
	"os"
	"strings"
)

// ColorMode controls when styled output is used.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the color mode is valid.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// Default values.
const (
	DefaultOutputSuffix  = ".modified.pdf"
	DefaultScratchSuffix = ".editobj"
	DefaultEditor        = "vim --"
	DefaultPager         = "less --"
	DefaultLogLevel      = "info"
)

// BackupsConfig controls whether an existing output file is kept as a sidecar
// copy before an export overwrites it.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // "sidecar" or "none"
}

// Config is the root configuration structure for pdfobjedit.
type Config struct {
	// Editor is the command line used to edit scratch files. The scratch path
	// is appended as the last argument.
	Editor string `mapstructure:"editor" yaml:"editor"`

	// Pager is the command line used to view containers.
	Pager string `mapstructure:"pager" yaml:"pager"`

	// OutputSuffix is appended to the source path to name the export target.
	OutputSuffix string `mapstructure:"output_suffix" yaml:"output_suffix"`

	// ScratchSuffix is appended to the source path to name the scratch file
	// handed to the editor.
	ScratchSuffix string `mapstructure:"scratch_suffix" yaml:"scratch_suffix"`

	// Color is "auto", "always" or "never".
	Color ColorMode `mapstructure:"color" yaml:"color"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Backups configures what happens to an existing output file on export.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// Ignore lists glob patterns skipped when scanning directories.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// Jobs caps concurrent workers when scanning. 0 means one per CPU.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`

	// CLI-level options (not persisted to config files).

	// Output overrides the derived export path.
	Output string `mapstructure:"-" yaml:"-"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults. Editor and pager honour
// $VISUAL, $EDITOR and $PAGER.
func NewConfig() *Config {
	return &Config{
		Editor:        firstEnv(DefaultEditor, "VISUAL", "EDITOR"),
		Pager:         firstEnv(DefaultPager, "PAGER"),
		OutputSuffix:  DefaultOutputSuffix,
		ScratchSuffix: DefaultScratchSuffix,
		Color:         ColorAuto,
		LogLevel:      DefaultLogLevel,
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
	}
}

// OutputPath returns the export target for source.
func (c *Config) OutputPath(source string) string {
	if c.Output != "" {
		return c.Output
	}
	return source + c.OutputSuffix
}

// ScratchPath returns the scratch file used while editing objects of source.
func (c *Config) ScratchPath(source string) string {
	return source + c.ScratchSuffix
}

func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return fallback
}
