// Package config provides configuration for the readbench driver.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	benchErrors "github.com/arkilian/readbench/internal/errors"
)

// Supported engine names.
const (
	EngineSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3
	EngineSQLite  = "sqlite"  // modernc.org/sqlite
)

// Supported storage types for publishing run reports.
const (
	StorageNone  = "none"
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds the benchmark configuration. It is passed explicitly into the
// driver; nothing reads process-wide state after loading.
type Config struct {
	// Path is the database file shared read-only by every attempt
	Path string `json:"path" yaml:"path"`

	// Engine selects the embedded engine adapter: sqlite3 or sqlite
	Engine string `json:"engine" yaml:"engine"`

	// MaxConnections is the top bound of the sweep (inclusive)
	MaxConnections int `json:"max_connections" yaml:"max_connections"`

	// Step is the increment between levels and the first level
	Step int `json:"step" yaml:"step"`

	// BusyTimeout is passed to the engine as its lock wait; 0 keeps the engine default
	BusyTimeout time.Duration `json:"busy_timeout" yaml:"busy_timeout"`

	// Report configuration
	Report ReportConfig `json:"report" yaml:"report"`

	// Storage configuration for publishing reports
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Metrics configuration
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// ReportConfig holds JSON run report settings.
type ReportConfig struct {
	// Path is where the JSON report is written; empty disables the file
	Path string `json:"path" yaml:"path"`

	// Compress snappy-encodes the report before writing and publishing
	Compress bool `json:"compress" yaml:"compress"`
}

// StorageConfig holds report publishing configuration.
type StorageConfig struct {
	// Type is the storage type: none, local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (MinIO, LocalStack)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// MetricsConfig holds Prometheus endpoint configuration.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the server
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:           "benchmark.db",
		Engine:         EngineSQLite3,
		MaxConnections: 1000,
		Step:           50,
		Storage: StorageConfig{
			Type: StorageNone,
		},
	}
}

// Resolve fills in values that depend on other settings.
func (c *Config) Resolve() {
	if c.Path == "" {
		c.Path = "benchmark.db"
	}
	if c.Engine == "" {
		c.Engine = EngineSQLite3
	}
	c.Engine = strings.ToLower(c.Engine)

	if c.Storage.Type == "" {
		c.Storage.Type = StorageNone
	}
	if c.Storage.Type == StorageLocal && c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(filepath.Dir(c.Path), "reports")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Path == "" {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig, "path is required")
	}

	switch c.Engine {
	case EngineSQLite3, EngineSQLite:
	default:
		return benchErrors.NewConfigError(benchErrors.CodeUnknownEngine,
			fmt.Sprintf("invalid engine: %s (must be sqlite3 or sqlite)", c.Engine))
	}

	// A negative step or a ceiling below step is an empty sweep, not an error
	if c.Step == 0 {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig, "step must not be zero")
	}
	if c.BusyTimeout < 0 {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig, "busy_timeout must not be negative")
	}

	switch c.Storage.Type {
	case StorageNone, StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
				"s3.bucket is required when storage type is s3")
		}
	default:
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			fmt.Sprintf("invalid storage type: %s (must be none, local, or s3)", c.Storage.Type))
	}

	if c.Storage.Type != StorageNone && c.Report.Path == "" {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			"report.path is required when a storage type is set")
	}

	return nil
}

// PublishReports returns true if reports should be uploaded to storage.
func (c *Config) PublishReports() bool {
	return c.Storage.Type != StorageNone && c.Report.Path != ""
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

// LoadFromEnv applies environment variables to cfg.
// MAX_CONNECTIONS and STEP keep their historical unprefixed names; everything
// else uses the READBENCH_ prefix.
func LoadFromEnv(cfg *Config) error {
	if err := envInt("MAX_CONNECTIONS", &cfg.MaxConnections); err != nil {
		return err
	}
	if err := envInt("STEP", &cfg.Step); err != nil {
		return err
	}

	if v := os.Getenv("READBENCH_PATH"); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv("READBENCH_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("READBENCH_BUSY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
				fmt.Sprintf("READBENCH_BUSY_TIMEOUT: %v", err))
		}
		cfg.BusyTimeout = d
	}

	// Report configuration
	if v := os.Getenv("READBENCH_REPORT_PATH"); v != "" {
		cfg.Report.Path = v
	}
	if v := os.Getenv("READBENCH_REPORT_COMPRESS"); v != "" {
		cfg.Report.Compress = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv("READBENCH_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("READBENCH_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("READBENCH_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("READBENCH_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("READBENCH_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}

	// Metrics configuration
	if v := os.Getenv("READBENCH_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			fmt.Sprintf("%s must be an integer, got %q", key, v))
	}
	*dst = n
	return nil
}
