package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nbclient/memcring/internal/client"
)

// Config is the YAML-loadable configuration for the memcring CLI and daemon
// front-end (SPEC_FULL.md §4.M).
type Config struct {
	Replicas    int               `yaml:"replicas"`
	Backends    []BackendConfig   `yaml:"backends"`
	Compression CompressionConfig `yaml:"compression"`
	Janitor     JanitorConfig     `yaml:"janitor"`
	Reconnect   ReconnectConfig   `yaml:"reconnect"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// BackendConfig is one configured memcached server.
type BackendConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// CompressionConfig configures the optional client-local value codec.
type CompressionConfig struct {
	Enabled    bool   `yaml:"enabled"`
	MinSize    string `yaml:"min_size"` // e.g. "4kb", "1mb"
	MinSizeRaw int64  `yaml:"-"`
	Parallel   bool   `yaml:"parallel"`
}

// JanitorConfig configures the maintenance reconnect sweep.
type JanitorConfig struct {
	Schedule string `yaml:"schedule"`
}

// ReconnectConfig throttles reconnect attempts.
type ReconnectConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// LoggingConfig selects the ambient logger's level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("backends must have at least one entry")
	}
	if len(c.Backends) > client.NBMax {
		return fmt.Errorf("backends must have at most %d entries, got %d", client.NBMax, len(c.Backends))
	}
	for i, b := range c.Backends {
		if b.Host == "" {
			return fmt.Errorf("backends[%d].host is required", i)
		}
		if b.Port == "" {
			return fmt.Errorf("backends[%d].port is required", i)
		}
	}

	if c.Replicas <= 0 {
		c.Replicas = 1
	}
	if c.Replicas > len(c.Backends) {
		c.Replicas = len(c.Backends)
	}

	if c.Compression.MinSize == "" {
		c.Compression.MinSize = "4kb"
	}
	minSize, err := ParseByteSize(c.Compression.MinSize)
	if err != nil {
		return fmt.Errorf("compression.min_size: %w", err)
	}
	c.Compression.MinSizeRaw = minSize

	if c.Janitor.Schedule == "" {
		c.Janitor.Schedule = "@every 1m"
	}

	if c.Reconnect.RatePerSecond <= 0 {
		c.Reconnect.RatePerSecond = 5
	}
	if c.Reconnect.Burst <= 0 {
		c.Reconnect.Burst = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	return nil
}

// ParseByteSize converts human-readable sizes like "4kb", "1mb" into bytes.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	type suffix struct {
		s string
		m int64
	}
	suffixes := []suffix{
		{"gb", 1024 * 1024 * 1024},
		{"mb", 1024 * 1024},
		{"kb", 1024},
		{"b", 1},
	}

	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.s) {
			numStr := strings.TrimSuffix(s, sfx.s)
			num, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q: %w", numStr, err)
			}
			return num * sfx.m, nil
		}
	}

	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown size format %q", s)
	}
	return num, nil
}
