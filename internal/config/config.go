// Package config holds the organizer's settings: classification service
// credentials, model parameters, file filters and the run ledger location.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

// Environment variables read by Load
const (
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvOrganization = "OPENAI_ORG"
	EnvBaseURL      = "OPENAI_BASE_URL"
	EnvModel        = "NOTEORG_MODEL"
)

// Config holds all settings passed to the organizer's components.
type Config struct {
	APIKey       string  `yaml:"api_key"`
	Organization string  `yaml:"organization"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`

	Extensions      []string `yaml:"extensions"`
	OutputExtension string   `yaml:"output_extension"`
	PolicyFile      string   `yaml:"policy_file"`
	DatabasePath    string   `yaml:"database_path"`
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, in increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.PolicyFile = resolvePath(cfg.PolicyFile, filepath.Dir(path))
		cfg.DatabasePath = resolvePath(cfg.DatabasePath, filepath.Dir(path))
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvOrganization); v != "" {
		c.Organization = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
}

// Validate checks the settings needed to run the pipeline
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if !strings.HasPrefix(c.OutputExtension, ".") {
		return fmt.Errorf("output_extension %q must start with a dot", c.OutputExtension)
	}
	return nil
}

// resolvePath expands ~ and makes relative paths relative to base
func resolvePath(p, base string) string {
	if p == "" {
		return p
	}
	p = expandHome(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
