// Package config handles cadprompt configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nugget/cadprompt/internal/prompts"
)

// ErrNotFound is returned by [FindConfig] when no config file exists in
// any search location.
var ErrNotFound = errors.New("no config file found")

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/cadprompt/config.yaml, /etc/cadprompt/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cadprompt", "config.yaml"))
	}

	paths = append(paths, "/etc/cadprompt/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// When nothing is found the error wraps [ErrNotFound].
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w (searched: %v)", ErrNotFound, DefaultSearchPaths())
}

// Config holds all cadprompt configuration.
type Config struct {
	// Variant is the template used when the caller does not pick one.
	Variant string `yaml:"variant"`
	// LogLevel is parsed by [ParseLogLevel].
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from a YAML file. Fields absent from the file
// keep their [Default] values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Variant:  string(prompts.Enhanced),
		LogLevel: "info",
	}
}

// Validate checks that the configured variant and log level are known.
func (c *Config) Validate() error {
	if _, err := prompts.ParseVariant(c.Variant); err != nil {
		return fmt.Errorf("config variant: %w", err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config log_level: %w", err)
	}
	return nil
}
