package policy_test

import (
	"context"
	"os"
	"testing"
	"time"

	"veritas-hq/aegis/pkg/policy"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	r, _ := newTestRegistry(t)
	loader := policy.NewLoader(r)

	path := writeSeedFile(t, `
policies:
  - name: evaluation-gate
    condition_type: require_evaluation_before_approval
`)
	if _, err := loader.LoadFile(context.Background(), path); err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := policy.NewWatcher(loader, path)
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	// Give the watcher time to install before the write.
	time.Sleep(200 * time.Millisecond)

	updated := `
policies:
  - name: evaluation-gate
    condition_type: require_evaluation_before_approval
  - name: high-risk-gate
    condition_type: block_high_risk_without_approval
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("Failed to rewrite seed file: %v", err)
	}

	// Wait past the debounce for the reload to land.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := r.GetByName(context.Background(), "high-risk-gate"); err == nil {
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch() returned error: %v", err)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("Expected the new policy to appear after the seed file changed")
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	r, _ := newTestRegistry(t)
	watcher := policy.NewWatcher(policy.NewLoader(r), writeSeedFile(t, "policies: []\n"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Watch() to return after cancellation")
	}
}
