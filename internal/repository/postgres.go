package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"vme-analyzer.io/analyzer/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const (
	matrixColumns   = `id, os_vendor, os_family, os_versions, classification_tier, notes, updated_at`
	guidanceColumns = `id, classification_tier, os_family, guidance_text, updated_at`

	queryMatrixByFamily = `SELECT ` + matrixColumns + ` FROM vme_matrix WHERE os_family = $1 ORDER BY id`
	queryMatrixAll      = `SELECT ` + matrixColumns + ` FROM vme_matrix ORDER BY id`
	insertMatrix        = `INSERT INTO vme_matrix (os_vendor, os_family, os_versions, classification_tier, notes) ` +
		`VALUES ($1, $2, $3, $4, $5) RETURNING ` + matrixColumns
	updateMatrix = `UPDATE vme_matrix SET os_vendor = $2, os_family = $3, os_versions = $4, ` +
		`classification_tier = $5, notes = $6, updated_at = now() WHERE id = $1 RETURNING ` + matrixColumns
	queryMatrixByID = `SELECT ` + matrixColumns + ` FROM vme_matrix WHERE id = $1 FOR UPDATE`
	deleteMatrix    = `DELETE FROM vme_matrix WHERE id = $1`
	countMatrix     = `SELECT count(*) FROM vme_matrix`
	seedMatrix      = `INSERT INTO vme_matrix (os_vendor, os_family, os_versions, classification_tier, notes) ` +
		`VALUES ($1, $2, $3, $4, $5)`

	queryGuidanceByFamily = `SELECT ` + guidanceColumns + ` FROM migration_paths ` +
		`WHERE classification_tier = $1 AND os_family = $2 ORDER BY id LIMIT 1`
	queryGuidanceDefault = `SELECT ` + guidanceColumns + ` FROM migration_paths ` +
		`WHERE classification_tier = $1 AND os_family IS NULL ORDER BY id LIMIT 1`
	queryGuidanceAll = `SELECT ` + guidanceColumns + ` FROM migration_paths ORDER BY id`
	updateGuidance   = `UPDATE migration_paths SET guidance_text = $2, updated_at = now() ` +
		`WHERE id = $1 RETURNING ` + guidanceColumns
	insertGuidance = `INSERT INTO migration_paths (classification_tier, os_family, guidance_text) VALUES ($1, $2, $3)`
	countGuidance  = `SELECT count(*) FROM migration_paths`
)

// SQLStore is the PostgreSQL implementation of Store.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store on db. db is usually stdlib.OpenDBFromPool over
// the shared pgx pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the matrix tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply matrix schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatrix(row rowScanner) (domain.MatrixEntry, error) {
	var e domain.MatrixEntry
	var tier string
	if err := row.Scan(&e.ID, &e.Vendor, &e.Family, &e.Versions, &tier, &e.Notes, &e.UpdatedAt); err != nil {
		return domain.MatrixEntry{}, err
	}
	e.Tier = domain.Tier(tier)
	return e, nil
}

func scanGuidance(row rowScanner) (domain.GuidanceEntry, error) {
	var g domain.GuidanceEntry
	var tier string
	var family sql.NullString
	if err := row.Scan(&g.ID, &tier, &family, &g.Text, &g.UpdatedAt); err != nil {
		return domain.GuidanceEntry{}, err
	}
	g.Tier = domain.Tier(tier)
	g.Family = family.String
	return g, nil
}

func (s *SQLStore) queryMatrix(ctx context.Context, query string, args ...any) ([]domain.MatrixEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MatrixEntry
	for rows.Next() {
		e, err := scanMatrix(rows)
		if err != nil {
			return nil, fmt.Errorf("scan matrix entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindMatrixEntries implements classifier.MatrixReader.
func (s *SQLStore) FindMatrixEntries(ctx context.Context, family string) ([]domain.MatrixEntry, error) {
	entries, err := s.queryMatrix(ctx, queryMatrixByFamily, family)
	if err != nil {
		return nil, fmt.Errorf("find matrix entries: %w", err)
	}
	return entries, nil
}

func (s *SQLStore) queryOneGuidance(ctx context.Context, query string, args ...any) (*domain.GuidanceEntry, error) {
	g, err := scanGuidance(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find guidance: %w", err)
	}
	return &g, nil
}

// FindGuidance implements classifier.GuidanceReader.
func (s *SQLStore) FindGuidance(ctx context.Context, tier domain.Tier, family string) (*domain.GuidanceEntry, error) {
	if family == "" {
		return nil, nil
	}
	return s.queryOneGuidance(ctx, queryGuidanceByFamily, tier.String(), family)
}

// FindDefaultGuidance implements classifier.GuidanceReader.
func (s *SQLStore) FindDefaultGuidance(ctx context.Context, tier domain.Tier) (*domain.GuidanceEntry, error) {
	return s.queryOneGuidance(ctx, queryGuidanceDefault, tier.String())
}

// ListMatrix returns every entry ordered by id.
func (s *SQLStore) ListMatrix(ctx context.Context) ([]domain.MatrixEntry, error) {
	entries, err := s.queryMatrix(ctx, queryMatrixAll)
	if err != nil {
		return nil, fmt.Errorf("list matrix: %w", err)
	}
	return entries, nil
}

// CreateMatrixEntry inserts an entry and returns it with id and timestamp.
func (s *SQLStore) CreateMatrixEntry(ctx context.Context, e domain.MatrixEntry) (domain.MatrixEntry, error) {
	if err := ValidateMatrixEntry(e); err != nil {
		return domain.MatrixEntry{}, err
	}
	created, err := scanMatrix(s.db.QueryRowContext(ctx, insertMatrix,
		e.Vendor, e.Family, e.Versions, e.Tier.String(), e.Notes))
	if err != nil {
		return domain.MatrixEntry{}, fmt.Errorf("create matrix entry: %w", err)
	}
	return created, nil
}

// UpdateMatrixEntry applies patch to entry id in one transaction.
func (s *SQLStore) UpdateMatrixEntry(ctx context.Context, id int64, patch MatrixPatch) (domain.MatrixEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.MatrixEntry{}, fmt.Errorf("begin update matrix entry: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanMatrix(tx.QueryRowContext(ctx, queryMatrixByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MatrixEntry{}, ErrNotFound
	}
	if err != nil {
		return domain.MatrixEntry{}, fmt.Errorf("load matrix entry %d: %w", id, err)
	}

	next := patch.Apply(current)
	if err := ValidateMatrixEntry(next); err != nil {
		return domain.MatrixEntry{}, err
	}

	updated, err := scanMatrix(tx.QueryRowContext(ctx, updateMatrix,
		id, next.Vendor, next.Family, next.Versions, next.Tier.String(), next.Notes))
	if err != nil {
		return domain.MatrixEntry{}, fmt.Errorf("update matrix entry %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.MatrixEntry{}, fmt.Errorf("commit update matrix entry: %w", err)
	}
	return updated, nil
}

// DeleteMatrixEntry removes entry id.
func (s *SQLStore) DeleteMatrixEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, deleteMatrix, id)
	if err != nil {
		return fmt.Errorf("delete matrix entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete matrix entry %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGuidance returns every guidance entry ordered by id.
func (s *SQLStore) ListGuidance(ctx context.Context) ([]domain.GuidanceEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryGuidanceAll)
	if err != nil {
		return nil, fmt.Errorf("list guidance: %w", err)
	}
	defer rows.Close()

	var out []domain.GuidanceEntry
	for rows.Next() {
		g, err := scanGuidance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guidance: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGuidanceText replaces the text of guidance entry id.
func (s *SQLStore) UpdateGuidanceText(ctx context.Context, id int64, text string) (domain.GuidanceEntry, error) {
	g, err := scanGuidance(s.db.QueryRowContext(ctx, updateGuidance, id, text))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GuidanceEntry{}, ErrNotFound
	}
	if err != nil {
		return domain.GuidanceEntry{}, fmt.Errorf("update guidance %d: %w", id, err)
	}
	return g, nil
}

// SeedIfEmpty inserts seed rows into each empty table in one transaction.
func (s *SQLStore) SeedIfEmpty(ctx context.Context, seed Seed) (SeedResult, error) {
	var res SeedResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, countMatrix).Scan(&n); err != nil {
		return res, fmt.Errorf("count matrix: %w", err)
	}
	if n == 0 {
		for _, e := range seed.MatrixEntries() {
			if _, err := tx.ExecContext(ctx, seedMatrix,
				e.Vendor, e.Family, e.Versions, e.Tier.String(), e.Notes); err != nil {
				return SeedResult{}, fmt.Errorf("seed matrix %s: %w", e.Family, err)
			}
			res.MatrixInserted++
		}
	}

	if err := tx.QueryRowContext(ctx, countGuidance).Scan(&n); err != nil {
		return SeedResult{}, fmt.Errorf("count guidance: %w", err)
	}
	if n == 0 {
		for _, g := range seed.GuidanceEntries() {
			family := sql.NullString{String: g.Family, Valid: g.Family != ""}
			if _, err := tx.ExecContext(ctx, insertGuidance, g.Tier.String(), family, g.Text); err != nil {
				return SeedResult{}, fmt.Errorf("seed guidance %s: %w", g.Tier, err)
			}
			res.GuidanceInserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}
	return res, nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
