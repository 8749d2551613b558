package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the portal gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Jenkins   JenkinsConfig   `yaml:"jenkins"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DiscoveryConfig maps service names to base URLs. The CI client resolves
// the "proxy" service here on every call.
type DiscoveryConfig struct {
	Services map[string]string `yaml:"services"`
}

// JenkinsConfig contains CI connection settings
type JenkinsConfig struct {
	// ProxyPath is appended to the discovered proxy base URL.
	ProxyPath string `yaml:"proxy_path"`
	// FanOut caps concurrent per-build detail requests per folder listing.
	FanOut int `yaml:"fan_out"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if len(cfg.Discovery.Services) == 0 {
		return nil, fmt.Errorf("config: discovery.services must name at least the proxy service")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Jenkins.ProxyPath == "" {
		c.Jenkins.ProxyPath = "/jenkins/api"
	}
	if c.Jenkins.FanOut == 0 {
		c.Jenkins.FanOut = 8
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}
