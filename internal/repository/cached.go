package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// CachedStore answers classification lookups from an in-memory snapshot of a
// backend store. Admin operations go to the backend and refresh the snapshot.
type CachedStore struct {
	backend Store
	cur     atomic.Pointer[loadedSnapshot]
	loads   atomic.Uint64
	group   singleflight.Group
	now     func() time.Time
	log     *zap.Logger
}

// loadedSnapshot tags a snapshot with the sequence number of the load that
// produced it.
type loadedSnapshot struct {
	snap *Snapshot
	seq  uint64
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore wraps backend and loads the first snapshot.
func NewCachedStore(ctx context.Context, backend Store) (*CachedStore, error) {
	c := &CachedStore{
		backend: backend,
		now:     time.Now,
		log:     logger.Named("matrix-cache"),
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh reloads the snapshot from the backend. Concurrent callers share
// one reload, which is not cancelled when one caller's ctx is.
func (c *CachedStore) Refresh(ctx context.Context) error {
	ch := c.group.DoChan("snapshot", func() (any, error) {
		return c.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load reads the backend and publishes the result unless a load that
// started later has already been published.
func (c *CachedStore) load(ctx context.Context) (*Snapshot, error) {
	seq := c.loads.Add(1)
	matrix, err := c.backend.ListMatrix(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh matrix snapshot: %w", err)
	}
	guidance, err := c.backend.ListGuidance(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh guidance snapshot: %w", err)
	}

	next := &loadedSnapshot{snap: NewSnapshot(matrix, guidance, c.now().UTC()), seq: seq}
	for {
		prev := c.cur.Load()
		if prev != nil && prev.seq > seq {
			return prev.snap, nil
		}
		if c.cur.CompareAndSwap(prev, next) {
			break
		}
	}
	c.log.Debug("matrix snapshot refreshed",
		zap.Uint64("seq", seq),
		zap.Int("matrix_entries", len(matrix)),
		zap.Int("guidance_entries", len(guidance)),
	)
	return next.snap, nil
}

// Current returns the snapshot in use.
func (c *CachedStore) Current() *Snapshot {
	if cur := c.cur.Load(); cur != nil {
		return cur.snap
	}
	return nil
}

// refreshAfterWrite starts its own load instead of joining one that may
// have read the backend before the write committed. On failure the
// previous snapshot stays and the periodic refresh job retries.
func (c *CachedStore) refreshAfterWrite(ctx context.Context) {
	if _, err := c.load(context.WithoutCancel(ctx)); err != nil {
		c.log.Warn("refresh after write failed, serving previous snapshot", zap.Error(err))
	}
}

// FindMatrixEntries implements classifier.MatrixReader.
func (c *CachedStore) FindMatrixEntries(_ context.Context, family string) ([]domain.MatrixEntry, error) {
	return c.Current().matrixFor(family), nil
}

// FindGuidance implements classifier.GuidanceReader.
func (c *CachedStore) FindGuidance(_ context.Context, tier domain.Tier, family string) (*domain.GuidanceEntry, error) {
	if family == "" {
		return nil, nil
	}
	return c.Current().guidanceFor(tier, family), nil
}

// FindDefaultGuidance implements classifier.GuidanceReader.
func (c *CachedStore) FindDefaultGuidance(_ context.Context, tier domain.Tier) (*domain.GuidanceEntry, error) {
	return c.Current().guidanceFor(tier, ""), nil
}

// ListMatrix reads from the backend.
func (c *CachedStore) ListMatrix(ctx context.Context) ([]domain.MatrixEntry, error) {
	return c.backend.ListMatrix(ctx)
}

// CreateMatrixEntry writes to the backend and refreshes the snapshot.
func (c *CachedStore) CreateMatrixEntry(ctx context.Context, e domain.MatrixEntry) (domain.MatrixEntry, error) {
	created, err := c.backend.CreateMatrixEntry(ctx, e)
	if err != nil {
		return domain.MatrixEntry{}, err
	}
	c.refreshAfterWrite(ctx)
	return created, nil
}

// UpdateMatrixEntry writes to the backend and refreshes the snapshot.
func (c *CachedStore) UpdateMatrixEntry(ctx context.Context, id int64, patch MatrixPatch) (domain.MatrixEntry, error) {
	updated, err := c.backend.UpdateMatrixEntry(ctx, id, patch)
	if err != nil {
		return domain.MatrixEntry{}, err
	}
	c.refreshAfterWrite(ctx)
	return updated, nil
}

// DeleteMatrixEntry writes to the backend and refreshes the snapshot.
func (c *CachedStore) DeleteMatrixEntry(ctx context.Context, id int64) error {
	if err := c.backend.DeleteMatrixEntry(ctx, id); err != nil {
		return err
	}
	c.refreshAfterWrite(ctx)
	return nil
}

// ListGuidance reads from the backend.
func (c *CachedStore) ListGuidance(ctx context.Context) ([]domain.GuidanceEntry, error) {
	return c.backend.ListGuidance(ctx)
}

// UpdateGuidanceText writes to the backend and refreshes the snapshot.
func (c *CachedStore) UpdateGuidanceText(ctx context.Context, id int64, text string) (domain.GuidanceEntry, error) {
	g, err := c.backend.UpdateGuidanceText(ctx, id, text)
	if err != nil {
		return domain.GuidanceEntry{}, err
	}
	c.refreshAfterWrite(ctx)
	return g, nil
}

// SeedIfEmpty seeds the backend and refreshes the snapshot when rows were added.
func (c *CachedStore) SeedIfEmpty(ctx context.Context, seed Seed) (SeedResult, error) {
	res, err := c.backend.SeedIfEmpty(ctx, seed)
	if err != nil {
		return res, err
	}
	if res.MatrixInserted+res.GuidanceInserted > 0 {
		c.refreshAfterWrite(ctx)
	}
	return res, nil
}

// Ping checks the backend.
func (c *CachedStore) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}
