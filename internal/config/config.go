// Package config provides unified configuration for the pairbench service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the unified configuration for the pairbench service.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Store configuration
	Store StoreConfig `json:"store" yaml:"store"`

	// Seed configuration
	Seed SeedConfig `json:"seed" yaml:"seed"`

	// Fixture configuration
	Fixture FixtureConfig `json:"fixture" yaml:"fixture"`

	// Runner configuration
	Runner RunnerConfig `json:"runner" yaml:"runner"`

	// Probe configuration
	Probe ProbeConfig `json:"probe" yaml:"probe"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the HTTP listen address
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// StoreConfig holds record store configuration.
type StoreConfig struct {
	// Path is the SQLite database path; empty selects a shared in-memory store
	Path string `json:"path" yaml:"path"`

	// InMemory forces the shared in-memory store even when Path is set
	InMemory bool `json:"in_memory" yaml:"in_memory"`
}

// SeedConfig holds seed data configuration.
type SeedConfig struct {
	// Customers is the number of customers seeded at startup
	Customers int `json:"customers" yaml:"customers"`
}

// FixtureConfig holds fixture source configuration.
type FixtureConfig struct {
	// Source is the fixture source: none, local, s3
	Source string `json:"source" yaml:"source"`

	// Key is the fixture object key within the source
	Key string `json:"key" yaml:"key"`

	// Path is the local fixture directory (for local source)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 source)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 fixture source configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// RunnerConfig holds aggregation runner configuration.
type RunnerConfig struct {
	// Workers is the number of concurrent aggregation workers (0 = GOMAXPROCS)
	Workers int `json:"workers" yaml:"workers"`

	// Chunks is the number of aggregation chunks (0 = workers * 4)
	Chunks int `json:"chunks" yaml:"chunks"`
}

// ProbeConfig holds measurement probe configuration.
type ProbeConfig struct {
	// ReclaimHint controls whether the memory probe hints reclamation
	// before reading the heap
	ReclaimHint bool `json:"reclaim_hint" yaml:"reclaim_hint"`

	// SettleDelay is the pause after the reclaim hint before the heap
	// is read
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/pairbench",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Store: StoreConfig{
			Path:     "",
			InMemory: true,
		},
		Seed: SeedConfig{
			Customers: 1000,
		},
		Fixture: FixtureConfig{
			Source: "none",
			Key:    "customers.jsonl.snappy",
			Path:   "",
		},
		Runner: RunnerConfig{
			Workers: 0,
			Chunks:  0,
		},
		Probe: ProbeConfig{
			ReclaimHint: true,
			SettleDelay: 50 * time.Millisecond,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/pairbench"
	}

	if c.Store.Path == "" && !c.Store.InMemory {
		c.Store.Path = filepath.Join(c.DataDir, "records.db")
	}

	if c.Fixture.Path == "" {
		c.Fixture.Path = filepath.Join(c.DataDir, "fixtures")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch c.Fixture.Source {
	case "none", "local", "s3":
		// Valid sources
	default:
		return fmt.Errorf("invalid fixture source: %s (must be none, local, or s3)", c.Fixture.Source)
	}

	if c.Fixture.Source == "s3" && c.Fixture.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when fixture source is s3")
	}

	if c.Fixture.Source != "none" && c.Fixture.Key == "" {
		return fmt.Errorf("fixture.key is required when a fixture source is set")
	}

	if c.Seed.Customers < 0 {
		return fmt.Errorf("seed.customers must not be negative, got %d", c.Seed.Customers)
	}

	if c.Runner.Workers < 0 {
		return fmt.Errorf("runner.workers must not be negative, got %d", c.Runner.Workers)
	}

	if c.Probe.SettleDelay < 0 {
		return fmt.Errorf("probe.settle_delay must not be negative, got %s", c.Probe.SettleDelay)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PAIRBENCH_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("PAIRBENCH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv("PAIRBENCH_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}

	// Store configuration
	if v := os.Getenv("PAIRBENCH_STORE_PATH"); v != "" {
		cfg.Store.Path = v
		cfg.Store.InMemory = false
	}
	if v := os.Getenv("PAIRBENCH_STORE_IN_MEMORY"); v != "" {
		cfg.Store.InMemory = v == "true" || v == "1"
	}

	// Seed configuration
	if v := os.Getenv("PAIRBENCH_SEED_CUSTOMERS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Seed.Customers)
	}

	// Fixture configuration
	if v := os.Getenv("PAIRBENCH_FIXTURE_SOURCE"); v != "" {
		cfg.Fixture.Source = v
	}
	if v := os.Getenv("PAIRBENCH_FIXTURE_KEY"); v != "" {
		cfg.Fixture.Key = v
	}
	if v := os.Getenv("PAIRBENCH_FIXTURE_PATH"); v != "" {
		cfg.Fixture.Path = v
	}
	if v := os.Getenv("PAIRBENCH_S3_BUCKET"); v != "" {
		cfg.Fixture.S3.Bucket = v
	}
	if v := os.Getenv("PAIRBENCH_S3_REGION"); v != "" {
		cfg.Fixture.S3.Region = v
	}
	if v := os.Getenv("PAIRBENCH_S3_ENDPOINT"); v != "" {
		cfg.Fixture.S3.Endpoint = v
	}

	// Runner configuration
	if v := os.Getenv("PAIRBENCH_RUNNER_WORKERS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Runner.Workers)
	}
	if v := os.Getenv("PAIRBENCH_RUNNER_CHUNKS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Runner.Chunks)
	}

	// Probe configuration
	if v := os.Getenv("PAIRBENCH_PROBE_RECLAIM_HINT"); v != "" {
		cfg.Probe.ReclaimHint = v == "true" || v == "1"
	}
	if v := os.Getenv("PAIRBENCH_PROBE_SETTLE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Probe.SettleDelay = d
		}
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.Fixture.Path,
	}

	if c.Store.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
