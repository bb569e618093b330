package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"vme-analyzer.io/analyzer/internal/domain"
)

// MemoryStore keeps both tables in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	matrix   []domain.MatrixEntry
	guidance []domain.GuidanceEntry
	// Ids are per table, as with the SQL sequences.
	nextMatrixID   int64
	nextGuidanceID int64
	now            func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextMatrixID: 1, nextGuidanceID: 1, now: time.Now}
}

// NewSeededMemoryStore creates a store loaded with seed.
func NewSeededMemoryStore(seed Seed) *MemoryStore {
	s := NewMemoryStore()
	_, _ = s.SeedIfEmpty(context.Background(), seed)
	return s
}

// FindMatrixEntries implements classifier.MatrixReader.
func (s *MemoryStore) FindMatrixEntries(_ context.Context, family string) ([]domain.MatrixEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MatrixEntry
	for _, e := range s.matrix {
		if e.Family == family {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindGuidance implements classifier.GuidanceReader.
func (s *MemoryStore) FindGuidance(_ context.Context, tier domain.Tier, family string) (*domain.GuidanceEntry, error) {
	if family == "" {
		return nil, nil
	}
	return s.findGuidance(tier, family), nil
}

// FindDefaultGuidance implements classifier.GuidanceReader.
func (s *MemoryStore) FindDefaultGuidance(_ context.Context, tier domain.Tier) (*domain.GuidanceEntry, error) {
	return s.findGuidance(tier, ""), nil
}

func (s *MemoryStore) findGuidance(tier domain.Tier, family string) *domain.GuidanceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.guidance {
		if g.Tier == tier && g.Family == family {
			return &g
		}
	}
	return nil
}

// ListMatrix returns every entry ordered by id.
func (s *MemoryStore) ListMatrix(context.Context) ([]domain.MatrixEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.matrix), nil
}

// CreateMatrixEntry stores a new entry and assigns its id.
func (s *MemoryStore) CreateMatrixEntry(_ context.Context, e domain.MatrixEntry) (domain.MatrixEntry, error) {
	if err := ValidateMatrixEntry(e); err != nil {
		return domain.MatrixEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextMatrixID
	s.nextMatrixID++
	e.UpdatedAt = s.now().UTC()
	s.matrix = append(s.matrix, e)
	return e, nil
}

// UpdateMatrixEntry applies patch to entry id.
func (s *MemoryStore) UpdateMatrixEntry(_ context.Context, id int64, patch MatrixPatch) (domain.MatrixEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.matrix, func(e domain.MatrixEntry) bool { return e.ID == id })
	if i < 0 {
		return domain.MatrixEntry{}, ErrNotFound
	}
	updated := patch.Apply(s.matrix[i])
	if err := ValidateMatrixEntry(updated); err != nil {
		return domain.MatrixEntry{}, err
	}
	updated.UpdatedAt = s.now().UTC()
	s.matrix[i] = updated
	return updated, nil
}

// DeleteMatrixEntry removes entry id.
func (s *MemoryStore) DeleteMatrixEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.matrix, func(e domain.MatrixEntry) bool { return e.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.matrix = slices.Delete(s.matrix, i, i+1)
	return nil
}

// ListGuidance returns every guidance entry ordered by id.
func (s *MemoryStore) ListGuidance(context.Context) ([]domain.GuidanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.guidance), nil
}

// UpdateGuidanceText replaces the text of guidance entry id.
func (s *MemoryStore) UpdateGuidanceText(_ context.Context, id int64, text string) (domain.GuidanceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.guidance, func(g domain.GuidanceEntry) bool { return g.ID == id })
	if i < 0 {
		return domain.GuidanceEntry{}, ErrNotFound
	}
	s.guidance[i].Text = text
	s.guidance[i].UpdatedAt = s.now().UTC()
	return s.guidance[i], nil
}

// SeedIfEmpty loads seed into each empty table.
func (s *MemoryStore) SeedIfEmpty(_ context.Context, seed Seed) (SeedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res SeedResult
	now := s.now().UTC()
	if len(s.matrix) == 0 {
		for _, e := range seed.MatrixEntries() {
			e.ID = s.nextMatrixID
			s.nextMatrixID++
			e.UpdatedAt = now
			s.matrix = append(s.matrix, e)
			res.MatrixInserted++
		}
	}
	if len(s.guidance) == 0 {
		for _, g := range seed.GuidanceEntries() {
			g.ID = s.nextGuidanceID
			s.nextGuidanceID++
			g.UpdatedAt = now
			s.guidance = append(s.guidance, g)
			res.GuidanceInserted++
		}
	}
	return res, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

