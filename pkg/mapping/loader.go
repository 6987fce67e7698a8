// Package mapping defines the declarative configuration that drives the
// provisioning planner: attribute templates, OU placement rules, and the
// optional side-effect generator blocks.
package mapping

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultAccountNameAttribute is the directory attribute used as the
// identity key when a config does not override it.
const DefaultAccountNameAttribute = "sAMAccountName"

var validate = validator.New()

// Load parses a mapping configuration from YAML bytes, applies defaults
// and validates it.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mapping config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFile reads and parses a mapping configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping config %s: %w", path, err)
	}
	return Load(data)
}

// applyDefaults fills optional fields with their default values.
func (c *Config) applyDefaults() {
	if c.AccountNameAttribute == "" {
		c.AccountNameAttribute = DefaultAccountNameAttribute
	}
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
}

// Validate checks structural validity of the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid mapping config: %w", err)
	}

	// The identity key must be derivable from the attribute templates,
	// otherwise every row would fail classification.
	if _, ok := c.Attributes[c.AccountNameAttribute]; !ok {
		return fmt.Errorf("invalid mapping config: no template for account name attribute %q", c.AccountNameAttribute)
	}

	return nil
}
