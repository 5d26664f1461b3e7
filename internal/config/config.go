// Package config reads kite.yaml, the per-project configuration for
// the checker: analysis knobs and diagnostic rendering preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level kite.yaml configuration.
type Config struct {
	// DepthBound caps transitive generic instantiation chains.
	// Exceeding it reports an instantiation overflow instead of
	// looping. Defaults to DefaultDepthBound.
	DepthBound int `yaml:"depth_bound,omitempty"`

	// MaxDiagnostics caps the diagnostics reported per unit; further
	// ones are counted but dropped. Defaults to DefaultMaxDiagnostics.
	MaxDiagnostics int `yaml:"max_diagnostics,omitempty"`

	// NoPrelude skips registration of the built-in types, interfaces
	// and implementations. Used by units that ship their own prelude.
	NoPrelude bool `yaml:"no_prelude,omitempty"`

	// Color controls diagnostic coloring: auto, on or off.
	// Defaults to auto (color when stderr is a terminal).
	Color string `yaml:"color,omitempty"`
}

// Default returns the configuration used when no kite.yaml exists.
func Default() *Config {
	return &Config{
		DepthBound:     DefaultDepthBound,
		MaxDiagnostics: DefaultMaxDiagnostics,
		Color:          ColorAuto,
	}
}

// LoadConfig reads and parses a kite.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses kite.yaml content from bytes. The path argument
// is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for kite.yaml starting from dir and walking up
// to parent directories. Returns the path if found, or empty string
// and nil error if no config exists anywhere above dir.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		candidate = filepath.Join(dir, ConfigFileNameAlt)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.DepthBound < 0 {
		return fmt.Errorf("%s: depth_bound must not be negative, got %d", path, c.DepthBound)
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("%s: max_diagnostics must not be negative, got %d", path, c.MaxDiagnostics)
	}
	switch c.Color {
	case "", ColorAuto, ColorOn, ColorOff:
	default:
		return fmt.Errorf("%s: color must be %s, %s or %s, got %q",
			path, ColorAuto, ColorOn, ColorOff, c.Color)
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.DepthBound == 0 {
		c.DepthBound = DefaultDepthBound
	}
	if c.MaxDiagnostics == 0 {
		c.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
}
