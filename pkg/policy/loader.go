package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk shape of a declarative policy definition file.
type SeedFile struct {
	Policies []SeedPolicy `yaml:"policies"`
}

// SeedPolicy is one declarative policy definition.
type SeedPolicy struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Scope          string `yaml:"scope"`
	ConditionType  string `yaml:"condition_type"`
	Active         *bool  `yaml:"active"`
	OrganizationID *int64 `yaml:"organization_id"`
}

// Loader seeds the policy registry from declarative YAML files. Seeding is
// idempotent: policies are matched by name, existing ones get their mutable
// fields (description, active) reconciled, and missing ones are created.
// Immutable fields on an existing policy are never touched; a seed entry that
// disagrees on condition type or scope is reported as an error for that entry
// without aborting the rest of the file.
type Loader struct {
	registry *Registry
	logger   *slog.Logger
}

// NewLoader creates a seed loader for the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{
		registry: registry,
		logger:   slog.Default().With("component", "policy.loader"),
	}
}

// LoadFile parses a seed file and applies it. Returns the number of policies
// created plus updated, and an error aggregating any per-entry failures.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	return l.Apply(ctx, &sf)
}

// Apply reconciles the registry with a parsed seed file.
func (l *Loader) Apply(ctx context.Context, sf *SeedFile) (int, error) {
	var applied int
	var errs []error

	for _, sp := range sf.Policies {
		if err := l.applyOne(ctx, sp); err != nil {
			errs = append(errs, fmt.Errorf("policy %q: %w", sp.Name, err))
			continue
		}
		applied++
	}

	if len(errs) > 0 {
		return applied, errors.Join(errs...)
	}
	return applied, nil
}

func (l *Loader) applyOne(ctx context.Context, sp SeedPolicy) error {
	active := true
	if sp.Active != nil {
		active = *sp.Active
	}

	existing, err := l.registry.GetByName(ctx, sp.Name)
	switch {
	case errors.Is(err, ErrPolicyNotFound):
		p := &Policy{
			Name:           sp.Name,
			Description:    sp.Description,
			Scope:          Scope(sp.Scope),
			ConditionType:  ConditionType(sp.ConditionType),
			Active:         active,
			OrganizationID: sp.OrganizationID,
		}
		if err := l.registry.Create(ctx, p); err != nil {
			return err
		}
		l.logger.Info("seeded policy", "policy", p.Name, "condition_type", string(p.ConditionType))
		return nil

	case err != nil:
		return err
	}

	// Existing policy: reconcile mutable fields only. Disagreement on an
	// immutable field is an authoring error in the seed file.
	if sp.ConditionType != "" && ConditionType(sp.ConditionType) != existing.ConditionType {
		return fmt.Errorf("%w: condition_type (have %q, seed wants %q)",
			ErrImmutableField, existing.ConditionType, sp.ConditionType)
	}
	if sp.Scope != "" && Scope(sp.Scope) != existing.Scope {
		return fmt.Errorf("%w: scope (have %q, seed wants %q)",
			ErrImmutableField, existing.Scope, sp.Scope)
	}

	_, err = l.registry.Update(ctx, existing.ID, Update{
		Description: &sp.Description,
		Active:      &active,
	})
	return err
}
