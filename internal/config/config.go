// Package config loads the master daemon's YAML configuration file, with
// sensible defaults resolved relative to the user's home directory when
// no file is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProcessingGuarantee selects the snapshotting discipline a job runs
// under.
type ProcessingGuarantee string

const (
	GuaranteeNone       ProcessingGuarantee = "none"
	GuaranteeAtLeastOnce ProcessingGuarantee = "at_least_once"
	GuaranteeExactlyOnce ProcessingGuarantee = "exactly_once"
)

// Config holds master daemon configuration.
type Config struct {
	// ListenAddr is the gRPC listen address for participant RPC, e.g. ":9701".
	ListenAddr string `yaml:"listen_addr"`

	// DBPath is the sqlite file backing the job execution record store.
	DBPath string `yaml:"db_path"`

	// QuorumSize is the minimum live member count required before any
	// job may start or resume.
	QuorumSize int `yaml:"quorum_size"`

	// AutoscalingEnabled turns on maybeScaleUp rescheduling after a
	// member joins (spec.md §5, P3/P4).
	AutoscalingEnabled bool `yaml:"autoscaling_enabled"`

	// DefaultProcessingGuarantee is applied to jobs that don't specify
	// their own.
	DefaultProcessingGuarantee ProcessingGuarantee `yaml:"default_processing_guarantee"`

	// SnapshotInterval is how often a running job takes a snapshot, as a
	// duration string (e.g. "10s").
	SnapshotInterval string `yaml:"snapshot_interval"`

	// RestartBackoff is how long the coordination service waits before
	// an automatic job restart, as a duration string.
	RestartBackoff string `yaml:"restart_backoff"`

	// MetricsRetryInterval is loaded and defaulted but not read by any
	// other package: the metrics aggregator's retry after
	// ExecutionNotFound uses its own fixed 100ms delay.
	MetricsRetryInterval string `yaml:"metrics_retry_interval"`

	// MaxConcurrentExecutions bounds the execution service's worker pool.
	MaxConcurrentExecutions int `yaml:"max_concurrent_executions"`

	LogLevel string `yaml:"log_level"`
}

const (
	DefaultListenAddr              = ":9701"
	DefaultQuorumSize              = 1
	DefaultAutoscalingEnabled      = true
	DefaultProcessingGuaranteeKind = GuaranteeExactlyOnce
	DefaultSnapshotInterval        = "10s"
	DefaultRestartBackoff          = "2s"
	DefaultMetricsRetryInterval    = "100ms"
	DefaultMaxConcurrentExecutions = 64
	DefaultLogLevel                = "info"
)

// DefaultConfig returns a Config with sensible defaults. DBPath is
// resolved relative to the user's home directory.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".jetmaster")

	return &Config{
		ListenAddr:                 DefaultListenAddr,
		DBPath:                     filepath.Join(dataDir, "jobstore.db"),
		QuorumSize:                 DefaultQuorumSize,
		AutoscalingEnabled:         DefaultAutoscalingEnabled,
		DefaultProcessingGuarantee: DefaultProcessingGuaranteeKind,
		SnapshotInterval:           DefaultSnapshotInterval,
		RestartBackoff:             DefaultRestartBackoff,
		MetricsRetryInterval:       DefaultMetricsRetryInterval,
		MaxConcurrentExecutions:    DefaultMaxConcurrentExecutions,
		LogLevel:                   DefaultLogLevel,
	}, nil
}

// Load reads a YAML config file at path, applying it on top of
// DefaultConfig. A missing file is not an error: Load returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.QuorumSize <= 0 {
		return fmt.Errorf("config: quorum_size must be greater than 0, got %d", c.QuorumSize)
	}
	if c.MaxConcurrentExecutions <= 0 {
		return fmt.Errorf("config: max_concurrent_executions must be greater than 0, got %d", c.MaxConcurrentExecutions)
	}
	switch c.DefaultProcessingGuarantee {
	case GuaranteeNone, GuaranteeAtLeastOnce, GuaranteeExactlyOnce:
	default:
		return fmt.Errorf("config: unknown default_processing_guarantee %q", c.DefaultProcessingGuarantee)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path must not be empty")
	}
	return nil
}

// EnsureDataDir creates DBPath's parent directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	dir := filepath.Dir(c.DBPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("config: create data directory %s: %w", dir, err)
	}
	return nil
}
