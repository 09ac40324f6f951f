package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_LogLevelNormalization(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized log level 'DEBUG', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddr != ":5000" {
		t.Errorf("Expected default listen address ':5000', got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.AuthRateLimit != 5 {
		t.Errorf("Expected default auth rate limit 5, got %v", cfg.Server.AuthRateLimit)
	}
	if cfg.Server.AuthRateBurst != 10 {
		t.Errorf("Expected default auth rate burst 10, got %v", cfg.Server.AuthRateBurst)
	}
}

func TestApplyDefaults_Metadata(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metadata.Type != "memory" {
		t.Errorf("Expected default metadata type 'memory', got %q", cfg.Metadata.Type)
	}
	if cfg.Metadata.Badger == nil {
		t.Fatal("Expected Badger map to be initialized")
	}
	if path, ok := cfg.Metadata.Badger["db_path"]; !ok || path != "/tmp/dittodrive-metadata" {
		t.Errorf("Expected default badger db_path '/tmp/dittodrive-metadata', got %v", path)
	}
}

func TestApplyDefaults_Cache(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Cache.Type != "memory" {
		t.Errorf("Expected default cache type 'memory', got %q", cfg.Cache.Type)
	}
	if addr, ok := cfg.Cache.Redis["addr"]; !ok || addr != "localhost:6379" {
		t.Errorf("Expected default redis addr 'localhost:6379', got %v", addr)
	}
}

func TestApplyDefaults_Content(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Content.Type != "filesystem" {
		t.Errorf("Expected default content type 'filesystem', got %q", cfg.Content.Type)
	}
	if path, ok := cfg.Content.Filesystem["path"]; !ok || path != "/tmp/dittodrive-content" {
		t.Errorf("Expected default filesystem path '/tmp/dittodrive-content', got %v", path)
	}
}

func TestApplyDefaults_Thumbnail(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Thumbnail.Workers != 4 {
		t.Errorf("Expected default thumbnail workers 4, got %d", cfg.Thumbnail.Workers)
	}
	if cfg.Thumbnail.QueueSize != 64 {
		t.Errorf("Expected default thumbnail queue size 64, got %d", cfg.Thumbnail.QueueSize)
	}
}

func TestApplyDefaults_GC(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.GC.Enabled {
		t.Error("Expected garbage collection to default to disabled")
	}
	if cfg.GC.Interval != 24*time.Hour {
		t.Errorf("Expected default GC interval 24h, got %v", cfg.GC.Interval)
	}
	if cfg.GC.BatchSize != 1000 {
		t.Errorf("Expected default GC batch size 1000, got %d", cfg.GC.BatchSize)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to default to disabled")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.ListenAddr = ":8080"
	cfg.Content.Type = "s3"
	cfg.Thumbnail.Workers = 16
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Expected explicit listen address to survive, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Content.Type != "s3" {
		t.Errorf("Expected explicit content type to survive, got %q", cfg.Content.Type)
	}
	if cfg.Thumbnail.Workers != 16 {
		t.Errorf("Expected explicit worker count to survive, got %d", cfg.Thumbnail.Workers)
	}
}
