package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models boardspace.yml.
type Config struct {
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Pagination struct {
		DefaultPageSize int `yaml:"default_page_size"`
		MaxPageSize     int `yaml:"max_page_size"`
	} `yaml:"pagination"`
	Activity struct {
		QueueSize int          `yaml:"queue_size"`
		Sinks     []SinkConfig `yaml:"sinks"`
	} `yaml:"activity"`
}

type SinkConfig struct {
	Kind           string `yaml:"kind"`
	URL            string `yaml:"url,omitempty"`
	Secret         string `yaml:"secret,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Pagination.DefaultPageSize <= 0 {
		return fmt.Errorf("config.pagination.default_page_size must be positive")
	}
	if c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("config.pagination.max_page_size must be >= default_page_size")
	}
	if c.Activity.QueueSize <= 0 {
		return fmt.Errorf("config.activity.queue_size must be positive")
	}
	for i, s := range c.Activity.Sinks {
		switch s.Kind {
		case "store":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config.activity.sinks[%d]: webhook sink requires url", i)
			}
		default:
			return fmt.Errorf("config.activity.sinks[%d]: unknown sink kind %q", i, s.Kind)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "boardspace.yml")
}

// Load reads and validates config from the workspace, falling back to
// defaults when the file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Server.BasePath = "/v1"
	cfg.Pagination.DefaultPageSize = 20
	cfg.Pagination.MaxPageSize = 100
	cfg.Activity.QueueSize = 256
	cfg.Activity.Sinks = []SinkConfig{{Kind: "store"}}
	return cfg
}

// FromYAML parses and validates config from raw YAML bytes. Omitted
// sections keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}
