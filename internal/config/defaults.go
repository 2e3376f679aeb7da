package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultModel           = "gpt-4o-mini"
	DefaultTemperature     = 1
	DefaultMaxTokens       = 4095
	DefaultOutputExtension = ".md"
)

// DefaultExtensions lists the input files considered notes
var DefaultExtensions = []string{".txt"}

// Default returns a Config with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultDatabasePath is ~/.noteorg/noteorg.db
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".noteorg", "noteorg.db")
	}
	return filepath.Join(home, ".noteorg", "noteorg.db")
}

// applyDefaults fills unset fields. A zero temperature reads as unset.
func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.OutputExtension == "" {
		c.OutputExtension = DefaultOutputExtension
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath()
	}
}
