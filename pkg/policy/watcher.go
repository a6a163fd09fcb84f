package policy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the policy seed file when it changes on disk, so
// declarative policy edits take effect without a restart. Reloads are
// debounced to absorb editor write bursts; each successful reload goes
// through the Loader, whose registry writes invalidate the read cache
// synchronously.
type Watcher struct {
	loader   *Loader
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the given seed file path.
func NewWatcher(loader *Loader, path string) *Watcher {
	return &Watcher{
		loader:   loader,
		path:     path,
		debounce: 100 * time.Millisecond,
		logger:   slog.Default().With("component", "policy.watcher"),
	}
}

// Watch blocks, reloading the seed file on every write until the context is
// cancelled. The parent directory is watched rather than the file itself so
// atomic rename-over-replace saves are observed.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.logger.Info("policy seed watcher started", "path", w.path)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("policy seed watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: restart the timer on every event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("policy seed watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	applied, err := w.loader.LoadFile(ctx, w.path)
	if err != nil {
		w.logger.Error("policy seed reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("policy seed reloaded", "path", w.path, "applied", applied)
}
