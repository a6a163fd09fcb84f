package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values that would fail at runtime.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, "server.listen_address must not be empty")
	}

	switch cfg.Storage.Driver {
	case "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be \"sqlite\" or \"sqlite3\", got %q", cfg.Storage.Driver))
	}
	if cfg.Storage.Path == "" {
		errs = append(errs, "storage.path must not be empty")
	}
	if cfg.Storage.MaxIdleConns > cfg.Storage.MaxOpenConns {
		errs = append(errs, "storage.max_idle_conns must not exceed storage.max_open_conns")
	}

	if cfg.Retention.RetentionDays < 0 {
		errs = append(errs, "retention.retention_days must not be negative")
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, fmt.Sprintf("retention.prune_schedule is not a valid cron expression: %v", err))
		}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level must be one of debug/info/warn/error, got %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be \"json\" or \"text\", got %q", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
