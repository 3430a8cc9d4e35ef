// Package config loads fastfind settings from a YAML file and merges them with CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexandro/fastfind/record"
)

// WatchConfig represents settings for the watch command
type WatchConfig struct {
	// Debounce is the quiet period after the last filesystem event before rebuilding
	Debounce time.Duration `yaml:"debounce"`
}

// Config represents fastfind configuration options
type Config struct {
	// Root is the directory indexed when no root argument is given ("" = working directory)
	Root string `yaml:"root"`

	// IndexPath is the index file written by build and read by search
	IndexPath string `yaml:"index_path"`

	// Layout is the record format, "merged" or "split". Build and search must agree.
	Layout string `yaml:"layout"`

	// FilesOnly indexes regular files only
	FilesOnly bool `yaml:"files_only"`

	// CrossFilesystems lets the walk descend into other mounted filesystems
	CrossFilesystems bool `yaml:"cross_filesystems"`

	// Atomic builds into a temporary file and renames it over the index
	Atomic bool `yaml:"atomic"`

	// Exclude lists glob patterns left out of the index
	Exclude []string `yaml:"exclude"`

	// Gitignore honors the root .gitignore
	Gitignore bool `yaml:"gitignore"`

	// SkipVCS skips version control metadata directories
	SkipVCS bool `yaml:"skip_vcs"`

	// Color controls match highlighting: auto, always, never
	Color string `yaml:"color"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFile is the log destination ("" = stderr)
	LogFile string `yaml:"log_file"`

	// Watch contains watch command configuration
	Watch WatchConfig `yaml:"watch"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		IndexPath: DefaultIndexPath(),
		Layout:    record.Merged.String(),
		Color:     "auto",
		LogLevel:  "warn",
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// DefaultIndexPath returns the index location used when none is configured.
func DefaultIndexPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "fastfind.idx"
	}
	return filepath.Join(dir, "fastfind", "index.txt")
}

// DefaultConfigPath returns the config file location used when --config is not given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fastfind", "config.yaml")
}

// LoadConfig loads configuration from a YAML file.
// A missing file yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys absent from the file keep their default values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := record.ParseLayout(c.Layout); err != nil {
		return err
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (must be auto, always or never)", c.Color)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.IndexPath == "" {
		return errors.New("index_path must not be empty")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// RecordLayout returns the parsed layout. Call Validate first.
func (c *Config) RecordLayout() record.Layout {
	layout, _ := record.ParseLayout(c.Layout)
	return layout
}

// Flags holds CLI overrides. Nil fields leave the configuration untouched.
type Flags struct {
	IndexPath        *string
	Layout           *string
	FilesOnly        *bool
	CrossFilesystems *bool
	Atomic           *bool
	Exclude          []string
	Gitignore        *bool
	SkipVCS          *bool
	Color            *string
	LogLevel         *string
	LogFile          *string
}

// MergeWithFlags merges CLI flags into the configuration.
// CLI flags take precedence over config file settings; exclude patterns are appended.
func (c *Config) MergeWithFlags(f Flags) error {
	if f.IndexPath != nil {
		c.IndexPath = *f.IndexPath
	}
	if f.Layout != nil {
		c.Layout = *f.Layout
	}
	if f.FilesOnly != nil {
		c.FilesOnly = *f.FilesOnly
	}
	if f.CrossFilesystems != nil {
		c.CrossFilesystems = *f.CrossFilesystems
	}
	if f.Atomic != nil {
		c.Atomic = *f.Atomic
	}
	c.Exclude = append(c.Exclude, f.Exclude...)
	if f.Gitignore != nil {
		c.Gitignore = *f.Gitignore
	}
	if f.SkipVCS != nil {
		c.SkipVCS = *f.SkipVCS
	}
	if f.Color != nil {
		c.Color = *f.Color
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogFile != nil {
		c.LogFile = *f.LogFile
	}
	return c.Validate()
}
