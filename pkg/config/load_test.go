package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("Expected default listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Expected default driver \"sqlite\", got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.WALMode == nil || !*cfg.Storage.WALMode {
		t.Error("Expected WAL mode to default on")
	}
	if cfg.Retention.RetentionDays != 365 {
		t.Errorf("Expected default retention of 365 days, got %d", cfg.Retention.RetentionDays)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging info/json, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled == nil || !*cfg.Metrics.Enabled {
		t.Error("Expected metrics to default on")
	}
	if cfg.Metrics.Namespace != "aegis" {
		t.Errorf("Expected default namespace \"aegis\", got %q", cfg.Metrics.Namespace)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: 0.0.0.0:9090
  read_timeout: 15s
storage:
  path: /var/lib/aegis/governance.db
  driver: sqlite3
policies:
  seed_file: /etc/aegis/policies.yaml
  watch_seed_file: true
retention:
  retention_days: 90
  max_records: 50000
  prune_schedule: "0 3 * * *"
logging:
  level: debug
  format: text
metrics:
  enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("Expected configured listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Expected 15s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Driver != "sqlite3" {
		t.Errorf("Expected driver sqlite3, got %q", cfg.Storage.Driver)
	}
	if !cfg.Policies.WatchSeedFile {
		t.Error("Expected seed file watching to be enabled")
	}
	if cfg.Retention.MaxRecords != 50000 {
		t.Errorf("Expected max records 50000, got %d", cfg.Retention.MaxRecords)
	}
	if cfg.Metrics.Enabled == nil || *cfg.Metrics.Enabled {
		t.Error("Expected metrics to be disabled")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: 127.0.0.1:8080
`)

	t.Setenv("AEGIS_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("AEGIS_STORAGE_PATH", "/tmp/override.db")
	t.Setenv("AEGIS_LOGGING_LEVEL", "warn")
	t.Setenv("AEGIS_METRICS_ENABLED", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("Expected env override for listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Storage.Path != "/tmp/override.db" {
		t.Errorf("Expected env override for storage path, got %q", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected env override for log level, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled == nil || *cfg.Metrics.Enabled {
		t.Error("Expected env override to disable metrics")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "postgres" },
			wantErr: "storage.driver",
		},
		{
			name:    "empty path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: "storage.path",
		},
		{
			name:    "idle exceeds open",
			mutate:  func(c *Config) { c.Storage.MaxIdleConns = 20 },
			wantErr: "max_idle_conns",
		},
		{
			name:    "bad cron expression",
			mutate:  func(c *Config) { c.Retention.PruneSchedule = "whenever" },
			wantErr: "prune_schedule",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Retention.RetentionDays = -1 },
			wantErr: "retention_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := Validate(Default()); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}
