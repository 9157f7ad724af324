// Package config loads the optional sv configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daviddao/scene_viewer/internal/fault"
)

// Config holds every setting the command line can also supply. Flags given
// explicitly override file values.
type Config struct {
	Scene        string        `yaml:"scene"`
	Demo         bool          `yaml:"demo"`
	Refresh      time.Duration `yaml:"refresh"`
	Precision    int           `yaml:"precision"`
	Verbosity    string        `yaml:"verbosity"` // notice | log
	LogFile      string        `yaml:"log_file"`
	Journal      string        `yaml:"journal"`
	MouseVisible bool          `yaml:"mouse_visible"`
}

// MaxPrecision bounds the number of decimal places shown.
const MaxPrecision = 12

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Refresh:   500 * time.Millisecond,
		Precision: 3,
		Verbosity: "notice",
	}
}

// Load reads a YAML config file over Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Refresh <= 0 {
		return fmt.Errorf("refresh must be > 0")
	}
	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d", MaxPrecision)
	}
	if _, err := fault.ParseVerbosity(c.Verbosity); err != nil {
		return err
	}
	if c.Demo && c.Scene != "" {
		return fmt.Errorf("scene and demo are mutually exclusive")
	}
	return nil
}

// ReporterVerbosity returns the parsed verbosity. Call after Validate.
func (c *Config) ReporterVerbosity() fault.Verbosity {
	v, _ := fault.ParseVerbosity(c.Verbosity)
	return v
}
