// Package config loads and saves iris finder settings as YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/gwquinn/IrisFinder/internal/location"
	"github.com/gwquinn/IrisFinder/internal/overlay"
)

// Config represents the application configuration.
type Config struct {
	// Location holds the localizer's tuning knobs.
	Location location.Params `yaml:"location"`

	Processing struct {
		// Workers is the number of images localized concurrently.
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	Output struct {
		// TraceDir, if set, receives the intermediate images of every
		// localization, prefixed with the input file name.
		TraceDir string `yaml:"traceDir"`

		// OverlayDir, if set, receives a copy of each input with the
		// boundaries drawn on it.
		OverlayDir string `yaml:"overlayDir"`

		// Show opens a window per intermediate image and overlay.
		Show bool `yaml:"show"`

		PupilColor  string `yaml:"pupilColor"`
		LimbusColor string `yaml:"limbusColor"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{Location: location.DefaultParams()}
	cfg.Processing.Workers = runtime.NumCPU()

	style := overlay.DefaultStyle()
	cfg.Output.PupilColor = style.PupilColor
	cfg.Output.LimbusColor = style.LimbusColor
	return cfg
}

// Style returns the overlay style described by cfg.
func (cfg *Config) Style() overlay.Style {
	style := overlay.DefaultStyle()
	style.PupilColor = cfg.Output.PupilColor
	style.LimbusColor = cfg.Output.LimbusColor
	return style
}

// Load reads the configuration at path. Settings missing from the
// file keep their defaults, and a missing file gives the default
// configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Location.Validate(); err != nil {
		return nil, fmt.Errorf("invalid location settings in %s: %w", path, err)
	}
	if cfg.Processing.Workers <= 0 {
		cfg.Processing.Workers = runtime.NumCPU()
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating its directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
