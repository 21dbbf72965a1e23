// Package config loads gateway configuration from the environment, with
// an optional YAML file for overrides that are awkward as env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the gateway's process-wide configuration. It is built once
// in main and passed explicitly; request handling only ever reads it.
type Config struct {
	ListenAddr string `env:"GATEWAY_ADDR,default=:3000" yaml:"listen_addr"`
	APIKey     string `env:"API_KEY" yaml:"api_key"`
	LogLevel   string `env:"LOG_LEVEL,default=info" yaml:"log_level"`

	// Default store country when a request supplies none.
	Country string `env:"DEFAULT_COUNTRY,default=us" yaml:"country"`

	// Upstream HTTP client timeout. The gateway itself imposes no
	// per-request deadline beyond this transport bound.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT,default=30s" yaml:"upstream_timeout"`

	// Comma-separated CORS origins; "*" allows all.
	CORSOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*" yaml:"cors_origins"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s" yaml:"shutdown_timeout"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithFile reads environment configuration and then applies overrides
// from a YAML file.
func LoadWithFile(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins returns the configured CORS origins as a list.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Validate enforces startup invariants. A gateway without an API key
// would accept nothing, so refusing to start beats serving 401s.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}
