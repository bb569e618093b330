package classifier

import (
	"context"

	"vme-analyzer.io/analyzer/internal/domain"
)

// MatrixReader looks up compatibility matrix rows.
type MatrixReader interface {
	// FindMatrixEntries returns every entry for family in store order.
	// An unknown family yields an empty slice, not an error.
	FindMatrixEntries(ctx context.Context, family string) ([]domain.MatrixEntry, error)
}

// GuidanceReader looks up migration guidance.
type GuidanceReader interface {
	// FindGuidance returns the family-specific entry for tier, or nil.
	FindGuidance(ctx context.Context, tier domain.Tier, family string) (*domain.GuidanceEntry, error)
	// FindDefaultGuidance returns the tier-wide default entry, or nil.
	FindDefaultGuidance(ctx context.Context, tier domain.Tier) (*domain.GuidanceEntry, error)
}

// Store is the read side of the matrix store needed to classify a batch.
type Store interface {
	MatrixReader
	GuidanceReader
}
