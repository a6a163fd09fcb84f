package retention

import (
	"context"
	"log/slog"
	"time"
)

// Store is the slice of storage the pruner needs.
type Store interface {
	PruneAuditEntries(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error)
}

// Config contains retention settings.
type Config struct {
	// RetentionDays is the age in days past which audit entries are deleted.
	RetentionDays int

	// MaxRecords caps the number of retained entries; 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is the cron expression driving scheduled pruning.
	// Empty disables the scheduler; Prune can still be called manually.
	PruneSchedule string
}

// Pruner deletes audit entries past the retention window.
type Pruner struct {
	store  Store
	config Config
	logger *slog.Logger
}

// NewPruner creates a pruner with the given configuration.
func NewPruner(store Store, config Config) *Pruner {
	return &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "audit.retention"),
	}
}

// Prune runs one pruning cycle and returns the number of deleted entries.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.store.PruneAuditEntries(ctx, cutoff, p.config.MaxRecords)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		p.logger.Info("audit entries pruned",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return deleted, nil
}
