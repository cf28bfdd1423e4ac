package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the modelfetch CLI.
type Config struct {
	MaxConcurrent int            `yaml:"max_concurrent"`
	Progress      bool           `yaml:"progress"`
	Mirror        string         `yaml:"mirror"`
	Retry         RetryConfig    `yaml:"retry"`
	Transfer      TransferConfig `yaml:"transfer"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	Retries int           `yaml:"retries"`
	Delay   time.Duration `yaml:"delay"`
}

// TransferConfig defines per-attempt transfer behavior.
type TransferConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Resume  bool          `yaml:"resume"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		MaxConcurrent: 4,
		Retry: RetryConfig{
			Retries: 3,
			Delay:   2 * time.Second,
		},
		Transfer: TransferConfig{
			Timeout: 5 * time.Minute,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	MaxConcurrent int                `yaml:"max_concurrent"`
	Progress      bool               `yaml:"progress"`
	Mirror        string             `yaml:"mirror"`
	Retry         yamlRetryConfig    `yaml:"retry"`
	Transfer      yamlTransferConfig `yaml:"transfer"`
}

type yamlRetryConfig struct {
	Retries *int   `yaml:"retries"`
	Delay   string `yaml:"delay"`
}

type yamlTransferConfig struct {
	Timeout string `yaml:"timeout"`
	Resume  bool   `yaml:"resume"`
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.MaxConcurrent != 0 {
		cfg.MaxConcurrent = yc.MaxConcurrent
	}
	cfg.Progress = yc.Progress
	if yc.Mirror != "" {
		cfg.Mirror = yc.Mirror
	}
	if yc.Retry.Retries != nil {
		cfg.Retry.Retries = *yc.Retry.Retries
	}
	if yc.Retry.Delay != "" {
		d, err := time.ParseDuration(yc.Retry.Delay)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.delay: %w", err)
		}
		cfg.Retry.Delay = d
	}
	if yc.Transfer.Timeout != "" {
		d, err := time.ParseDuration(yc.Transfer.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse transfer.timeout: %w", err)
		}
		cfg.Transfer.Timeout = d
	}
	cfg.Transfer.Resume = yc.Transfer.Resume

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides. Environment variables
// use the MODELFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MODELFETCH_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MODELFETCH_MAX_CONCURRENT: %w", err)
		}
		c.MaxConcurrent = n
	}
	if v := os.Getenv("MODELFETCH_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("MODELFETCH_MIRROR"); v != "" {
		c.Mirror = v
	}
	if v := os.Getenv("MODELFETCH_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MODELFETCH_RETRIES: %w", err)
		}
		c.Retry.Retries = n
	}
	if v := os.Getenv("MODELFETCH_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MODELFETCH_RETRY_DELAY: %w", err)
		}
		c.Retry.Delay = d
	}
	if v := os.Getenv("MODELFETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MODELFETCH_TIMEOUT: %w", err)
		}
		c.Transfer.Timeout = d
	}
	if v := os.Getenv("MODELFETCH_RESUME"); v != "" {
		c.Transfer.Resume = v == "true" || v == "1"
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrent <= 0 {
		return errors.New("config: max_concurrent must be positive")
	}
	if c.Retry.Retries < 0 {
		return errors.New("config: retry.retries must not be negative")
	}
	if c.Retry.Delay < 0 {
		return errors.New("config: retry.delay must not be negative")
	}
	if c.Transfer.Timeout < 0 {
		return errors.New("config: transfer.timeout must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.MaxConcurrent != 0 {
		c.MaxConcurrent = override.MaxConcurrent
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Mirror != "" {
		c.Mirror = override.Mirror
	}
	if override.Retry.Retries != 0 {
		c.Retry.Retries = override.Retry.Retries
	}
	if override.Retry.Delay != 0 {
		c.Retry.Delay = override.Retry.Delay
	}
	if override.Transfer.Timeout != 0 {
		c.Transfer.Timeout = override.Transfer.Timeout
	}
	if override.Transfer.Resume {
		c.Transfer.Resume = override.Transfer.Resume
	}
	return c
}
