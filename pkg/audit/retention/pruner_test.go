package retention

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakePruneStore records the prune calls it receives.
type fakePruneStore struct {
	cutoff     time.Time
	maxRecords int64
	deleted    int64
	err        error
	calls      int
}

func (s *fakePruneStore) PruneAuditEntries(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error) {
	s.calls++
	s.cutoff = cutoff
	s.maxRecords = maxRecords
	return s.deleted, s.err
}

func TestPruner_Prune(t *testing.T) {
	store := &fakePruneStore{deleted: 3}
	pruner := NewPruner(store, Config{RetentionDays: 30, MaxRecords: 1000})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
	if store.maxRecords != 1000 {
		t.Errorf("Expected max records 1000, got %d", store.maxRecords)
	}

	wantCutoff := time.Now().UTC().AddDate(0, 0, -30)
	if diff := store.cutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("Expected cutoff near %v, got %v", wantCutoff, store.cutoff)
	}
}

func TestPruner_PruneError(t *testing.T) {
	cause := errors.New("database locked")
	pruner := NewPruner(&fakePruneStore{err: cause}, Config{RetentionDays: 30})

	if _, err := pruner.Prune(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("Expected storage error to propagate, got %v", err)
	}
}

func TestScheduler_NoSchedule(t *testing.T) {
	store := &fakePruneStore{}
	scheduler := NewScheduler(NewPruner(store, Config{RetentionDays: 30}))

	// Without a schedule Start is a no-op, not an error.
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() without schedule failed: %v", err)
	}
	scheduler.Stop()
	if store.calls != 0 {
		t.Errorf("Expected no prune calls, got %d", store.calls)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(NewPruner(&fakePruneStore{}, Config{
		RetentionDays: 30,
		PruneSchedule: "not a cron expression",
	}))

	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("Expected error for invalid cron expression")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := NewScheduler(NewPruner(&fakePruneStore{}, Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}))

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	scheduler.Stop()
	// A second Stop is safe.
	scheduler.Stop()
}
