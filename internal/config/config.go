// Package config reads gmlite.toml, the optional per-project run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up next to the source file and in its parents
const FileName = "gmlite.toml"

// Config represents a parsed gmlite.toml file.
type Config struct {
	Run RunConfig `toml:"run"`
	Log LogConfig `toml:"log"`

	// Path is the absolute path of the file this config was read from.
	Path string `toml:"-"`
}

// RunConfig holds the [run] section.
type RunConfig struct {
	MaxSteps    int  `toml:"max_steps"`
	Disassemble bool `toml:"disassemble"`
	Trace       bool `toml:"trace"`
}

// LogConfig holds the [log] section.
type LogConfig struct {
	Verbose bool `toml:"verbose"`
	NoColor bool `toml:"no_color"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if c.Run.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: run.max_steps must not be negative, got %d", path, c.Run.MaxSteps)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", path, err)
	}
	c.Path = abs

	return &c, nil
}

// FindAndLoad searches for gmlite.toml starting at startDir and walking up
// parent directories. Returns nil, nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
