package config

import "time"

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Policies  PoliciesConfig  `yaml:"policies"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the host:port the API listens on.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading a request, including the body.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig configures the governance database.
type StorageConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (CGO).
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is the wait when the database is locked.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PoliciesConfig configures declarative policy seeding.
type PoliciesConfig struct {
	// SeedFile is a YAML file of policy definitions applied at startup.
	// Empty disables seeding.
	SeedFile string `yaml:"seed_file"`

	// WatchSeedFile reloads the seed file on change.
	WatchSeedFile bool `yaml:"watch_seed_file"`
}

// RetentionConfig configures audit log retention. Disabled unless a prune
// schedule is set. Violations are never pruned.
type RetentionConfig struct {
	// RetentionDays is the age in days past which audit entries are pruned.
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the audit entry count; 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression (e.g. "0 3 * * *"). Empty disables
	// scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes the /metrics endpoint.
	Enabled *bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`
}
