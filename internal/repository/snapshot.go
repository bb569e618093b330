package repository

import (
	"time"

	"vme-analyzer.io/analyzer/internal/domain"
)

// Snapshot is an immutable copy of both tables with lookup indexes.
type Snapshot struct {
	Matrix   []domain.MatrixEntry
	Guidance []domain.GuidanceEntry
	LoadedAt time.Time

	byFamily map[string][]domain.MatrixEntry
}

// NewSnapshot indexes matrix and guidance rows. Rows keep their given order.
func NewSnapshot(matrix []domain.MatrixEntry, guidance []domain.GuidanceEntry, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		Matrix:   matrix,
		Guidance: guidance,
		LoadedAt: loadedAt,
		byFamily: make(map[string][]domain.MatrixEntry),
	}
	for _, e := range matrix {
		s.byFamily[e.Family] = append(s.byFamily[e.Family], e)
	}
	return s
}

func (s *Snapshot) matrixFor(family string) []domain.MatrixEntry {
	entries := s.byFamily[family]
	out := make([]domain.MatrixEntry, len(entries))
	copy(out, entries)
	return out
}

func (s *Snapshot) guidanceFor(tier domain.Tier, family string) *domain.GuidanceEntry {
	for i := range s.Guidance {
		g := s.Guidance[i]
		if g.Tier == tier && g.Family == family {
			return &g
		}
	}
	return nil
}
