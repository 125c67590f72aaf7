// Package config provides configuration loading and management for mprview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"mprview/internal/logging"
	"mprview/internal/models"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Display parameters
	Display struct {
		// Width and Height are the fixed size of every rendered frame
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"display"`

	// Source parameters
	Source struct {
		// Pattern selects slice files by name, case-insensitive
		Pattern string `yaml:"pattern"`

		// Workers specifies how many files are decoded in parallel
		Workers int `yaml:"workers"`
	} `yaml:"source"`

	// View parameters
	View struct {
		// Plane is the plane shown after a series is loaded
		Plane string `yaml:"plane"`
	} `yaml:"view"`

	// Logging parameters
	Logging struct {
		// File is the log file; empty logs to stderr
		File string `yaml:"file"`

		MaxSizeMB  int `yaml:"maxSizeMB"`
		MaxAgeDays int `yaml:"maxAgeDays"`

		// Verbose enables debug messages
		Verbose bool `yaml:"verbose"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Display.Width = 640
	cfg.Display.Height = 640

	cfg.Source.Pattern = "*.dcm"
	cfg.Source.Workers = runtime.NumCPU()

	cfg.View.Plane = "axial"

	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxAgeDays = 7

	return cfg
}

// Validate checks the values that cannot be corrected silently
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return errors.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if _, err := models.ParsePlane(c.View.Plane); err != nil {
		return errors.Wrap(err, "view.plane")
	}
	if _, err := filepath.Match(c.Source.Pattern, ""); err != nil {
		return errors.Wrapf(err, "source.pattern %q", c.Source.Pattern)
	}
	return nil
}

// Plane returns the configured initial plane
func (c *Config) Plane() models.Plane {
	p, _ := models.ParsePlane(c.View.Plane)
	return p
}

// LoggingConfig converts the logging section for logging.Setup
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Verbose:    c.Logging.Verbose,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config file")
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "error creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "error writing config file")
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
