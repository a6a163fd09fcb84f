package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sink is the append side of audit storage. Implementations are append-only;
// there is no way to modify or remove a record through this interface.
//
// A Sink may be transaction-scoped: the enforcement coordinator builds a
// Recorder over its own transaction so violation and audit writes commit or
// roll back together with the rest of the transition.
type Sink interface {
	AppendEntry(ctx context.Context, e *Entry) error
	AppendViolation(ctx context.Context, v *Violation) error
}

// Reader is the query side of audit storage, consumed by the read-only
// reporting surface.
type Reader interface {
	QueryEntries(ctx context.Context, q Query) ([]*Entry, error)
	QueryViolations(ctx context.Context, q Query) ([]*Violation, error)
	CountEntries(ctx context.Context, q Query) (int64, error)
	CountViolations(ctx context.Context, q Query) (int64, error)
}

// Recorder appends immutable audit records. It assigns record identity and
// timestamps; persistence failures are wrapped in RecorderError and must be
// treated as fatal by callers recording a denial.
type Recorder struct {
	sink   Sink
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given sink.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: slog.Default().With("component", "audit.recorder"),
	}
}

// RecordEntry appends one audit entry and returns it with identity and
// timestamp filled in.
func (r *Recorder) RecordEntry(ctx context.Context, entityType, entityID, action string, details map[string]any) (*Entry, error) {
	e := &Entry{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.sink.AppendEntry(ctx, e); err != nil {
		return nil, &RecorderError{Kind: "entry", Cause: err}
	}

	r.logger.Debug("audit entry recorded",
		"entity_type", entityType,
		"entity_id", entityID,
		"action", action,
	)
	return e, nil
}

// RecordViolation appends one violation record, filling in identity and
// timestamp.
func (r *Recorder) RecordViolation(ctx context.Context, v *Violation) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if err := r.sink.AppendViolation(ctx, v); err != nil {
		return &RecorderError{Kind: "violation", Cause: err}
	}

	r.logger.Info("policy violation recorded",
		"policy", v.PolicyName,
		"model_id", v.ModelID,
		"action", v.Action,
	)
	return nil
}
