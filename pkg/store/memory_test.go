package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"veritas-hq/aegis/pkg/audit"
	"veritas-hq/aegis/pkg/registry"
)

func TestMemoryStore_TxRollback(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx Tx) error {
		if err := tx.CreateModel(ctx, &registry.Model{Name: "doomed"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected injected error, got %v", err)
	}

	if _, err := st.GetModelByName(ctx, "doomed"); !errors.Is(err, registry.ErrModelNotFound) {
		t.Errorf("Expected model write to roll back, got %v", err)
	}
}

func TestMemoryStore_TxCommit(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx Tx) error {
		if err := tx.CreateModel(ctx, &registry.Model{Name: "kept"}); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, &audit.Entry{
			ID: "e-1", EntityType: audit.EntityModel, EntityID: "1",
			Action: audit.ActionCreate, CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}

	if _, err := st.GetModelByName(ctx, "kept"); err != nil {
		t.Errorf("Expected committed model to be visible, got %v", err)
	}
	n, err := st.CountEntries(ctx, audit.Query{})
	if err != nil {
		t.Fatalf("CountEntries() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 committed entry, got %d", n)
	}
}

func TestMemoryStore_TxReadsOwnWrites(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx Tx) error {
		m := &registry.Model{Name: "staged"}
		if err := tx.CreateModel(ctx, m); err != nil {
			return err
		}
		got, err := tx.GetModel(ctx, m.ID)
		if err != nil {
			return err
		}
		if got.Name != "staged" {
			t.Errorf("Expected staged write to be readable inside the tx, got %q", got.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}
}

func TestMemoryStore_FailOp(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	cause := errors.New("disk full")
	st.FailOp("create_model", cause)

	err := st.CreateModel(ctx, &registry.Model{Name: "m"})
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StorageError, got %v", err)
	}
	if serr.Backend != "memory" || serr.Operation != "create_model" {
		t.Errorf("Unexpected error metadata: %+v", serr)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to be reachable through Unwrap")
	}

	// Clearing restores the operation.
	st.FailOp("create_model", nil)
	if err := st.CreateModel(ctx, &registry.Model{Name: "m"}); err != nil {
		t.Fatalf("CreateModel() after clearing failed: %v", err)
	}
}

func TestMemoryStore_PruneAuditEntries(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	now := time.Now().UTC()
	for i, age := range []time.Duration{-72 * time.Hour, -48 * time.Hour, -time.Hour} {
		e := &audit.Entry{
			ID:         string(rune('a' + i)),
			EntityType: audit.EntityModel,
			EntityID:   "1",
			Action:     audit.ActionCreate,
			CreatedAt:  now.Add(age),
		}
		if err := st.AppendEntry(ctx, e); err != nil {
			t.Fatalf("AppendEntry() failed: %v", err)
		}
	}

	deleted, err := st.PruneAuditEntries(ctx, now.Add(-24*time.Hour), 0)
	if err != nil {
		t.Fatalf("PruneAuditEntries() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	n, err := st.CountEntries(ctx, audit.Query{})
	if err != nil {
		t.Fatalf("CountEntries() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", n)
	}
}
