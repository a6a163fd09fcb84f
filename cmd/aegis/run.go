package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"veritas-hq/aegis/pkg/audit/retention"
	"veritas-hq/aegis/pkg/cli"
	"veritas-hq/aegis/pkg/config"
	"veritas-hq/aegis/pkg/enforcement"
	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/server"
	"veritas-hq/aegis/pkg/store"
	"veritas-hq/aegis/pkg/telemetry/logging"
	"veritas-hq/aegis/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the governance server",
	Long: `Start the governance API server with the specified configuration.

The server keeps the model registry, enforces governance policies on
compliance status transitions, and serves the audit and violation reporting
endpoints.

Examples:
  # Start with default config
  aegis run

  # Start with custom config
  aegis run --config /etc/aegis/config.yaml

  # Override listen address
  aegis run --listen 0.0.0.0:8080

  # Validate config without starting the server
  aegis run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Errorf("failed to load config: %w", err))
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if _, err := logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	}); err != nil {
		return cli.NewConfigError("logging", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Aegis v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Storage
	st, err := store.NewSQLiteStore(&store.SQLiteConfig{
		Path:         cfg.Storage.Path,
		Driver:       cfg.Storage.Driver,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
		MaxIdleConns: cfg.Storage.MaxIdleConns,
		WALMode:      cfg.Storage.WALMode == nil || *cfg.Storage.WALMode,
		BusyTimeout:  cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open governance database: %w", err)
	}
	defer st.Close()
	fmt.Println("✓ Governance database opened")

	// Metrics
	var promRegistry *prometheus.Registry
	var enforcementMetrics *metrics.EnforcementMetrics
	var httpMetrics *metrics.HTTPMetrics
	if cfg.Metrics.Enabled == nil || *cfg.Metrics.Enabled {
		promRegistry = prometheus.NewRegistry()
		enforcementMetrics = metrics.NewEnforcementMetrics(cfg.Metrics.Namespace, promRegistry)
		httpMetrics = metrics.NewHTTPMetrics(cfg.Metrics.Namespace, promRegistry)
	}

	registry := policy.NewRegistry(st)
	coordinator := enforcement.NewCoordinator(st, enforcementMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Policy seeding and hot reload
	if cfg.Policies.SeedFile != "" {
		loader := policy.NewLoader(registry)
		applied, err := loader.LoadFile(ctx, cfg.Policies.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to seed policies: %w", err)
		}
		fmt.Printf("✓ Policies seeded (%d applied)\n", applied)

		if cfg.Policies.WatchSeedFile {
			watcher := policy.NewWatcher(loader, cfg.Policies.SeedFile)
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("policy seed watcher stopped", "error", err)
				}
			}()
		}
	}

	// Audit retention
	if cfg.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(st, retention.Config{
			RetentionDays: cfg.Retention.RetentionDays,
			MaxRecords:    cfg.Retention.MaxRecords,
			PruneSchedule: cfg.Retention.PruneSchedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}

	srv := server.NewServer(&cfg.Server, st, registry, coordinator, httpMetrics, promRegistry)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if promRegistry != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()
		// Start returns once in-flight requests have drained; the store must
		// stay open until then.
		if err := <-errChan; err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Server stopped")
		return nil
	}
}
