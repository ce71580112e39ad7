// Package config handles egg.toml interpreter configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file FindAndLoad looks for.
const FileName = "egg.toml"

// Config represents an egg.toml configuration.
type Config struct {
	Engine Engine `toml:"engine"`
	Debug  Debug  `toml:"debug"`
	Repl   Repl   `toml:"repl"`
	Log    Log    `toml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Engine bounds program execution.
type Engine struct {
	MaxSteps   int  `toml:"max_steps"`
	MaxDepth   int  `toml:"max_depth"`
	FatalError bool `toml:"fatal_error"`
}

// Debug configures interpreter debug output.
type Debug struct {
	Parse bool `toml:"parse"`
	Dump  bool `toml:"dump"`
}

// Repl configures the interactive session.
type Repl struct {
	Prompt       string `toml:"prompt"`
	Continuation string `toml:"continuation"`
	// History is the history file, relative to the user's home directory
	// unless absolute. Empty disables history.
	History string `toml:"history"`
}

// Log configures diagnostic logging and terminal colours.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
}

// Default returns the configuration used when no egg.toml exists.
func Default() *Config {
	return &Config{
		Repl: Repl{
			Prompt:       "> ",
			Continuation: ". ",
			History:      ".egg_history",
		},
		Log: Log{
			Color: "auto",
		},
	}
}

// Load parses the configuration file at path. Settings it leaves out keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find an egg.toml file and loads
// it. If there is none, it returns the defaults.
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
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// HistoryPath resolves the REPL history file against home.
func (c *Config) HistoryPath(home string) string {
	if c.Repl.History == "" || filepath.IsAbs(c.Repl.History) {
		return c.Repl.History
	}
	return filepath.Join(home, c.Repl.History)
}

func (c *Config) validate() error {
	if c.Engine.MaxSteps < 0 {
		return fmt.Errorf("engine.max_steps must not be negative, got %d", c.Engine.MaxSteps)
	}
	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("engine.max_depth must not be negative, got %d", c.Engine.MaxDepth)
	}

	switch c.Log.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("log.color must be auto, always or never, got %q", c.Log.Color)
	}

	return nil
}
