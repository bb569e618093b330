// Package repository stores the compatibility matrix and migration guidance.
//
// Three implementations share one contract: MemoryStore (CLI, tests and the
// memory store mode), SQLStore (PostgreSQL through database/sql on the shared
// pgx pool) and CachedStore, which serves classification reads from an
// in-memory snapshot of another store.
//
// Import Path: vme-analyzer.io/analyzer/internal/repository
package repository

import (
	"context"
	"strings"

	"vme-analyzer.io/analyzer/internal/domain"
	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = apperrors.ErrNotFound

// ErrInvalidEntry is returned when an entry fails validation.
var ErrInvalidEntry = apperrors.ErrInvalidInput

// Store is the full matrix store contract.
type Store interface {
	FindMatrixEntries(ctx context.Context, family string) ([]domain.MatrixEntry, error)
	FindGuidance(ctx context.Context, tier domain.Tier, family string) (*domain.GuidanceEntry, error)
	FindDefaultGuidance(ctx context.Context, tier domain.Tier) (*domain.GuidanceEntry, error)

	ListMatrix(ctx context.Context) ([]domain.MatrixEntry, error)
	CreateMatrixEntry(ctx context.Context, entry domain.MatrixEntry) (domain.MatrixEntry, error)
	UpdateMatrixEntry(ctx context.Context, id int64, patch MatrixPatch) (domain.MatrixEntry, error)
	DeleteMatrixEntry(ctx context.Context, id int64) error

	ListGuidance(ctx context.Context) ([]domain.GuidanceEntry, error)
	UpdateGuidanceText(ctx context.Context, id int64, text string) (domain.GuidanceEntry, error)

	// SeedIfEmpty loads seed rows into each table that has no rows yet.
	SeedIfEmpty(ctx context.Context, seed Seed) (SeedResult, error)
	Ping(ctx context.Context) error
}

// MatrixPatch is a partial update of a matrix entry; nil fields are unchanged.
type MatrixPatch struct {
	Vendor   *string      `json:"vendor,omitempty"`
	Family   *string      `json:"os_family,omitempty"`
	Versions *string      `json:"versions,omitempty"`
	Tier     *domain.Tier `json:"tier,omitempty"`
	Notes    *string      `json:"notes,omitempty"`
}

// Apply returns e with the patch applied.
func (p MatrixPatch) Apply(e domain.MatrixEntry) domain.MatrixEntry {
	if p.Vendor != nil {
		e.Vendor = *p.Vendor
	}
	if p.Family != nil {
		e.Family = *p.Family
	}
	if p.Versions != nil {
		e.Versions = *p.Versions
	}
	if p.Tier != nil {
		e.Tier = *p.Tier
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}

// SeedResult reports how many rows SeedIfEmpty inserted.
type SeedResult struct {
	MatrixInserted   int
	GuidanceInserted int
}

// ValidateMatrixEntry checks the fields every stored entry must carry.
func ValidateMatrixEntry(e domain.MatrixEntry) error {
	switch {
	case strings.TrimSpace(e.Vendor) == "":
		return invalid("vendor is required")
	case strings.TrimSpace(e.Family) == "":
		return invalid("os_family is required")
	case len(e.VersionTokens()) == 0:
		return invalid("versions must list at least one version or \"any\"")
	case !e.Tier.Valid():
		return invalid("unknown tier " + e.Tier.String())
	}
	return nil
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrInvalidEntry }

func invalid(msg string) error { return &validationError{msg: msg} }
