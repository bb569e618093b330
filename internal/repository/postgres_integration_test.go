package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/testutil"
)

func TestSQLStore_PostgresRoundTrip(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "matrix_store")
	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "schema is re-runnable")

	store := NewSQLStore(db)
	seed, err := DefaultSeed()
	require.NoError(t, err)

	res, err := store.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{MatrixInserted: 22, GuidanceInserted: 6}, res)

	res, err = store.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)

	entries, err := store.FindMatrixEntries(ctx, "Windows Server")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.TierOfficiallySupported, entries[0].Tier)

	g, err := store.FindDefaultGuidance(ctx, domain.TierNeedsInfo)
	require.NoError(t, err)
	require.NotNil(t, g)

	tier := domain.TierNeedsReview
	updated, err := store.UpdateMatrixEntry(ctx, entries[0].ID, MatrixPatch{Tier: &tier})
	require.NoError(t, err)
	assert.Equal(t, domain.TierNeedsReview, updated.Tier)

	require.NoError(t, store.DeleteMatrixEntry(ctx, entries[0].ID))
	assert.ErrorIs(t, store.DeleteMatrixEntry(ctx, entries[0].ID), ErrNotFound)
}
