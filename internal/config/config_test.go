package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("expected ListenAddr %q, got %q", DefaultListenAddr, cfg.ListenAddr)
	}
	if cfg.QuorumSize != DefaultQuorumSize {
		t.Errorf("expected QuorumSize %d, got %d", DefaultQuorumSize, cfg.QuorumSize)
	}
	if cfg.DefaultProcessingGuarantee != DefaultProcessingGuaranteeKind {
		t.Errorf("expected DefaultProcessingGuarantee %q, got %q", DefaultProcessingGuaranteeKind, cfg.DefaultProcessingGuarantee)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jetmaster.yaml")
	writeFile(t, path, `
listen_addr: ":9999"
quorum_size: 3
autoscaling_enabled: false
default_processing_guarantee: at_least_once
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListenAddr != ":9999" {
		t.Errorf("expected ListenAddr :9999, got %q", cfg.ListenAddr)
	}
	if cfg.QuorumSize != 3 {
		t.Errorf("expected QuorumSize 3, got %d", cfg.QuorumSize)
	}
	if cfg.AutoscalingEnabled {
		t.Error("expected AutoscalingEnabled false")
	}
	if cfg.DefaultProcessingGuarantee != GuaranteeAtLeastOnce {
		t.Errorf("expected at_least_once, got %q", cfg.DefaultProcessingGuarantee)
	}
	// Unset fields retain their defaults.
	if cfg.MaxConcurrentExecutions != DefaultMaxConcurrentExecutions {
		t.Errorf("expected default MaxConcurrentExecutions %d, got %d", DefaultMaxConcurrentExecutions, cfg.MaxConcurrentExecutions)
	}
}

func TestValidate_RejectsBadQuorumSize(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.QuorumSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero quorum size")
	}
}

func TestValidate_RejectsUnknownGuarantee(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.DefaultProcessingGuarantee = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown processing guarantee")
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.DBPath = filepath.Join(dir, "nested", "jobstore.db")

	if err := cfg.EnsureDataDir(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Errorf("expected data dir to be created: %v", err)
	}
}
