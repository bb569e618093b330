package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/config"
	"vme-analyzer.io/analyzer/internal/infrastructure"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
	"vme-analyzer.io/analyzer/internal/pkg/worker"
	"vme-analyzer.io/analyzer/internal/repository"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config *config.Config
	// DB is nil with the memory matrix store.
	DB    *infrastructure.DatabaseClients
	Pools *worker.Pools

	// Store serves both classification reads and admin writes.
	Store repository.Store
	// Cache is the snapshot in front of the SQL store; nil with the memory store.
	Cache *repository.CachedStore
}

// NewInfrastructure initializes pools, the matrix store and, for the
// postgres store, the database.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	seed, err := LoadSeed(cfg.Matrix)
	if err != nil {
		return nil, err
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize:  cfg.Worker.GeneralPoolSize,
		ClassifyPoolSize: cfg.Worker.ClassifyPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	infra := &Infrastructure{Config: cfg, Pools: pools}

	switch cfg.Matrix.Store {
	case config.StoreMemory:
		infra.Store = repository.NewSeededMemoryStore(seed)
		logger.Info("Using in-memory matrix store")
	default:
		if err := infra.initPostgres(ctx, seed); err != nil {
			infra.Close()
			return nil, err
		}
	}
	return infra, nil
}

func (i *Infrastructure) initPostgres(ctx context.Context, seed repository.Seed) error {
	db, err := infrastructure.NewDatabaseClients(ctx, i.Config.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	i.DB = db

	// Dev-mode: auto-create matrix tables + River queue tables.
	if i.Config.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	backend := repository.NewSQLStore(db.DB)
	res, err := backend.SeedIfEmpty(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed matrix: %w", err)
	}
	if res.MatrixInserted > 0 || res.GuidanceInserted > 0 {
		logger.Info("Matrix store seeded",
			zap.Int("matrix_inserted", res.MatrixInserted),
			zap.Int("guidance_inserted", res.GuidanceInserted),
		)
	}

	cache, err := repository.NewCachedStore(ctx, backend)
	if err != nil {
		return fmt.Errorf("load matrix snapshot: %w", err)
	}
	i.Cache = cache
	i.Store = cache
	return nil
}

// LoadSeed returns the configured seed file, or the built-in seed.
func LoadSeed(cfg config.MatrixConfig) (repository.Seed, error) {
	if cfg.SeedFile == "" {
		seed, err := repository.DefaultSeed()
		if err != nil {
			return repository.Seed{}, fmt.Errorf("load built-in seed: %w", err)
		}
		return seed, nil
	}
	seed, err := repository.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		return repository.Seed{}, fmt.Errorf("load seed %s: %w", cfg.SeedFile, err)
	}
	return seed, nil
}

// InitRiver initializes the River client on top of a prepared worker
// registry. It is a no-op without a database.
func (i *Infrastructure) InitRiver(workers *river.Workers, periodic []*river.PeriodicJob) error {
	if i == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if i.DB == nil {
		return nil
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
