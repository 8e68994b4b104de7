// Package boltc holds the project-wide configuration for the Bolt rules
// translator.
package boltc

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Version is the translator version reported by --version
const Version = "0.3.1"

// DefaultConfigFile is looked up in the working directory on every run
const DefaultConfigFile = "boltc.yaml"

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Color output modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the optional boltc.yaml configuration. Command line
// flags take precedence over every setting here.
type Config struct {
	Color string `yaml:"color"` // auto, always, never
	Debug bool   `yaml:"debug"` // default for --debug
}

// LoadConfig loads configuration from the specified file. A missing file is
// not an error; it yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	_, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	// strict mode rejects unknown fields
	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Color == "" {
		config.Color = ColorAuto
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration for common mistakes
func validateConfig(config *Config) error {
	switch config.Color {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return fmt.Errorf("%w: invalid color mode '%s': must be one of auto, always, never", ErrConfigValidation, config.Color)
	}
}

// defaultConfig returns the configuration used when no file exists
func defaultConfig() *Config {
	return &Config{
		Color: ColorAuto,
		Debug: false,
	}
}
