package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/vk/depends/internal/variables"
	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
// The file-backed part is read from YAML; the CLI fills in the rest.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Manifests   []string          `yaml:"manifests"`
	Recipe      string            `yaml:"recipe"`
	Destination string            `yaml:"destination"`
	Variables   map[string]string `yaml:"variables"`

	WorkflowPath string `yaml:"-"`
	Target       string `yaml:"-"`
	RunNow       bool   `yaml:"-"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Recipe: "print",
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkflowPath == "" {
		return fmt.Errorf("workflow path is required")
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.Log.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}

	if c.Recipe == "" {
		return fmt.Errorf("recipe is required")
	}

	for name := range c.Variables {
		if !variables.ValidName(name) {
			return fmt.Errorf("invalid variable name %q: use upper-case letters, digits and underscores", name)
		}
	}
	return nil
}
