// Package main seeds the compatibility matrix and migration guidance into
// PostgreSQL.
//
// The server seeds an empty database on startup. This command does the same
// outside of a server start, for example after restoring a dump without the
// matrix tables. Tables that already have rows are left untouched.
//
// Import Path: vme-analyzer.io/analyzer/cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/app/modules"
	"vme-analyzer.io/analyzer/internal/config"
	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/infrastructure"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
	"vme-analyzer.io/analyzer/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	seed, err := modules.LoadSeed(cfg.Matrix)
	if err != nil {
		return err
	}

	ctx := context.Background()

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	// The matrix schema is idempotent, so it is applied even when
	// auto_migrate is off.
	if err := repository.Migrate(ctx, db.DB); err != nil {
		return fmt.Errorf("migrate matrix schema: %w", err)
	}

	logger.Info("Starting matrix seeding...")
	res, err := seedStore(ctx, repository.NewSQLStore(db.DB), seed)
	if err != nil {
		return err
	}

	logger.Info("Matrix seeding completed successfully",
		zap.Int("matrix_inserted", res.MatrixInserted),
		zap.Int("guidance_inserted", res.GuidanceInserted),
	)
	return nil
}

// seedStore loads seed into store and checks that every tier ends up with
// default guidance.
func seedStore(ctx context.Context, store repository.Store, seed repository.Seed) (repository.SeedResult, error) {
	res, err := store.SeedIfEmpty(ctx, seed)
	if err != nil {
		return res, fmt.Errorf("seed store: %w", err)
	}

	missing, err := tiersWithoutDefault(ctx, store)
	if err != nil {
		return res, err
	}
	for _, tier := range missing {
		logger.Warn("tier has no default migration guidance", zap.String("tier", tier.String()))
	}
	return res, nil
}

func tiersWithoutDefault(ctx context.Context, store repository.Store) ([]domain.Tier, error) {
	guidance, err := store.ListGuidance(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guidance: %w", err)
	}
	have := make(map[domain.Tier]bool, len(guidance))
	for _, g := range guidance {
		if g.IsDefault() {
			have[g.Tier] = true
		}
	}

	var missing []domain.Tier
	for _, tier := range domain.AllTiers {
		if !have[tier] {
			missing = append(missing, tier)
		}
	}
	return missing, nil
}
