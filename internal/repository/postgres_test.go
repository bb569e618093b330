package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vme-analyzer.io/analyzer/internal/domain"
)

var (
	matrixCols   = []string{"id", "os_vendor", "os_family", "os_versions", "classification_tier", "notes", "updated_at"}
	guidanceCols = []string{"id", "classification_tier", "os_family", "guidance_text", "updated_at"}
	fixedTime    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLStore(db), mock
}

func TestSQLStore_FindMatrixEntries(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(queryMatrixByFamily).
		WithArgs("RHEL").
		WillReturnRows(sqlmock.NewRows(matrixCols).
			AddRow(6, "Red Hat", "RHEL", "7,8,9", "officially_supported", "HPE validated", fixedTime).
			AddRow(7, "Red Hat", "RHEL", "6", "needs_review", "End of life", fixedTime))

	entries, err := store.FindMatrixEntries(context.Background(), "RHEL")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(6), entries[0].ID)
	assert.Equal(t, domain.TierOfficiallySupported, entries[0].Tier)
	assert.Equal(t, []string{"6"}, entries[1].VersionTokens())
}

func TestSQLStore_FindMatrixEntries_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(queryMatrixByFamily).
		WithArgs("RHEL").
		WillReturnError(errors.New("connection refused"))

	_, err := store.FindMatrixEntries(context.Background(), "RHEL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSQLStore_FindGuidance(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(queryGuidanceByFamily).
		WithArgs("needs_review", "RHEL").
		WillReturnRows(sqlmock.NewRows(guidanceCols).
			AddRow(9, "needs_review", "RHEL", "Check the kernel.", fixedTime))
	g, err := store.FindGuidance(ctx, domain.TierNeedsReview, "RHEL")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "RHEL", g.Family)

	mock.ExpectQuery(queryGuidanceDefault).
		WithArgs("needs_info").
		WillReturnRows(sqlmock.NewRows(guidanceCols).
			AddRow(5, "needs_info", nil, "Gather more data.", fixedTime))
	g, err = store.FindDefaultGuidance(ctx, domain.TierNeedsInfo)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.True(t, g.IsDefault())

	mock.ExpectQuery(queryGuidanceDefault).
		WithArgs("supported_vdi").
		WillReturnRows(sqlmock.NewRows(guidanceCols))
	g, err = store.FindDefaultGuidance(ctx, domain.TierSupportedVDI)
	require.NoError(t, err)
	assert.Nil(t, g)

	// No query for an empty family.
	g, err = store.FindGuidance(ctx, domain.TierSupportedVDI, "")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestSQLStore_CreateMatrixEntry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(insertMatrix).
		WithArgs("Acme", "AcmeOS", "1,2", "needs_review", "").
		WillReturnRows(sqlmock.NewRows(matrixCols).
			AddRow(23, "Acme", "AcmeOS", "1,2", "needs_review", "", fixedTime))

	created, err := store.CreateMatrixEntry(context.Background(), domain.MatrixEntry{
		Vendor: "Acme", Family: "AcmeOS", Versions: "1,2", Tier: domain.TierNeedsReview,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(23), created.ID)
	assert.Equal(t, fixedTime, created.UpdatedAt)

	_, err = store.CreateMatrixEntry(context.Background(), domain.MatrixEntry{Vendor: "Acme"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestSQLStore_UpdateMatrixEntry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(queryMatrixByID).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(matrixCols).
			AddRow(8, "Canonical", "Ubuntu", "20.04,22.04", "officially_supported", "", fixedTime))
	mock.ExpectQuery(updateMatrix).
		WithArgs(int64(8), "Canonical", "Ubuntu", "20.04,22.04,24.04", "officially_supported", "").
		WillReturnRows(sqlmock.NewRows(matrixCols).
			AddRow(8, "Canonical", "Ubuntu", "20.04,22.04,24.04", "officially_supported", "", fixedTime))
	mock.ExpectCommit()

	versions := "20.04,22.04,24.04"
	updated, err := store.UpdateMatrixEntry(context.Background(), 8, MatrixPatch{Versions: &versions})
	require.NoError(t, err)
	assert.Equal(t, versions, updated.Versions)
}

func TestSQLStore_UpdateMatrixEntry_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(queryMatrixByID).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.UpdateMatrixEntry(context.Background(), 404, MatrixPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_DeleteMatrixEntry(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(deleteMatrix).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.DeleteMatrixEntry(ctx, 3))

	mock.ExpectExec(deleteMatrix).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.DeleteMatrixEntry(ctx, 3), ErrNotFound)
}

func TestSQLStore_UpdateGuidanceText(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(updateGuidance).
		WithArgs(int64(2), "Test first.").
		WillReturnRows(sqlmock.NewRows(guidanceCols).
			AddRow(2, "unofficially_supported", nil, "Test first.", fixedTime))
	g, err := store.UpdateGuidanceText(ctx, 2, "Test first.")
	require.NoError(t, err)
	assert.Equal(t, "Test first.", g.Text)

	mock.ExpectQuery(updateGuidance).
		WithArgs(int64(77), "x").
		WillReturnError(sql.ErrNoRows)
	_, err = store.UpdateGuidanceText(ctx, 77, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_SeedIfEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	seed := Seed{
		Matrix: []SeedMatrixRow{{Vendor: "IBM", Family: "OS/2", Versions: "any", Tier: domain.TierNotSupported}},
		Guidance: []SeedGuidanceRow{
			{Tier: domain.TierNotSupported, Text: "Retain on VMware."},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(countMatrix).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(seedMatrix).
		WithArgs("IBM", "OS/2", "any", "not_supported", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(countGuidance).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectCommit()

	res, err := store.SeedIfEmpty(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{MatrixInserted: 1}, res)
}

func TestSQLStore_SeedIfEmpty_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	seed := Seed{Matrix: []SeedMatrixRow{{Vendor: "IBM", Family: "OS/2", Versions: "any", Tier: domain.TierNotSupported}}}

	mock.ExpectBegin()
	mock.ExpectQuery(countMatrix).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(seedMatrix).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.SeedIfEmpty(context.Background(), seed)
	require.Error(t, err)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(schemaSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
