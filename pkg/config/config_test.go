package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// writeConfigFile marshals the given document to a YAML file in a temporary
// directory and returns its path.
func writeConfigFile(t *testing.T, doc map[string]any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"logging": map[string]any{"level": "debug"},
		"server": map[string]any{
			"listen_addr":      ":8080",
			"shutdown_timeout": "10s",
		},
		"metadata": map[string]any{
			"type":   "badger",
			"badger": map[string]any{"db_path": "/var/lib/dittodrive"},
		},
		"cache": map[string]any{
			"type":  "redis",
			"redis": map[string]any{"addr": "redis:6379", "db": 2},
		},
		"content": map[string]any{
			"type": "s3",
			"s3":   map[string]any{"bucket": "drive-content", "region": "eu-west-1"},
		},
		"thumbnail": map[string]any{"workers": 8, "queue_size": 128},
		"gc":        map[string]any{"enabled": true, "interval": "1h"},
		"metrics":   map[string]any{"enabled": true, "port": 9091},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Expected listen address ':8080', got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Metadata.Type != "badger" {
		t.Errorf("Expected metadata type 'badger', got %q", cfg.Metadata.Type)
	}
	if path, _ := cfg.Metadata.Badger["db_path"].(string); path != "/var/lib/dittodrive" {
		t.Errorf("Expected badger db_path '/var/lib/dittodrive', got %q", path)
	}
	if cfg.Cache.Type != "redis" {
		t.Errorf("Expected cache type 'redis', got %q", cfg.Cache.Type)
	}
	if addr, _ := cfg.Cache.Redis["addr"].(string); addr != "redis:6379" {
		t.Errorf("Expected redis addr 'redis:6379', got %q", addr)
	}
	if cfg.Content.Type != "s3" {
		t.Errorf("Expected content type 's3', got %q", cfg.Content.Type)
	}
	if cfg.Thumbnail.Workers != 8 || cfg.Thumbnail.QueueSize != 128 {
		t.Errorf("Expected thumbnail settings 8/128, got %d/%d", cfg.Thumbnail.Workers, cfg.Thumbnail.QueueSize)
	}
	if !cfg.GC.Enabled || cfg.GC.Interval != time.Hour {
		t.Errorf("Expected GC enabled with 1h interval, got %v/%v", cfg.GC.Enabled, cfg.GC.Interval)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9091 {
		t.Errorf("Expected metrics enabled on 9091, got %v/%d", cfg.Metrics.Enabled, cfg.Metrics.Port)
	}

	// Sections absent from the file still get defaults.
	if cfg.Server.AuthRateLimit != 5 {
		t.Errorf("Expected default auth rate limit, got %v", cfg.Server.AuthRateLimit)
	}
	if cfg.GC.BatchSize != 1000 {
		t.Errorf("Expected default GC batch size, got %d", cfg.GC.BatchSize)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	// Point the default search path at an empty directory.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Server.ListenAddr != ":5000" {
		t.Errorf("Expected default listen address ':5000', got %q", cfg.Server.ListenAddr)
	}
	if cfg.Metadata.Type != "memory" {
		t.Errorf("Expected default metadata type 'memory', got %q", cfg.Metadata.Type)
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"logging": map[string]any{"level": "info"},
	})

	t.Setenv("DITTODRIVE_LOGGING_LEVEL", "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected the environment to override the file, got %q", cfg.Logging.Level)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"metadata": map[string]any{"type": "postgres"},
	})

	if _, err := Load(path); err == nil {
		t.Fatal("Expected Load to fail validation for an unknown store type")
	}
}

func TestLoad_ExplicitPathMissingFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected Load to fail for an explicitly named missing file")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	want := filepath.Join("/custom/config", "dittodrive", "config.yaml")
	if got := GetDefaultConfigPath(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
