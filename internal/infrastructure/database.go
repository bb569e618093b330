// Package infrastructure opens the PostgreSQL pool behind the postgres
// matrix store.
//
// One pgxpool is shared by the SQL store (through database/sql) and River.
//
// Import Path: vme-analyzer.io/analyzer/internal/infrastructure
package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/config"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
	"vme-analyzer.io/analyzer/internal/repository"
)

const healthCheckPeriod = time.Minute

// DatabaseClients are the handles opened on the shared pool.
type DatabaseClients struct {
	Pool *pgxpool.Pool
	// DB is Pool seen through database/sql, for repository.SQLStore.
	DB *sql.DB
	// RiverClient stays nil until InitRiverClient.
	RiverClient *river.Client[pgx.Tx]
}

// PoolConfig parses cfg into a pgxpool configuration. Zero limits keep the
// driver defaults. Every connection runs in UTC so updated_at values
// compare consistently.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.HealthCheckPeriod = healthCheckPeriod
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET timezone = 'UTC'")
		return err
	}
	return pc, nil
}

// NewDatabaseClients opens and pings the pool.
func NewDatabaseClients(ctx context.Context, cfg config.DatabaseConfig) (*DatabaseClients, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Database pool ready",
		zap.String("host", pc.ConnConfig.Host),
		zap.String("database", pc.ConnConfig.Database),
		zap.Int32("max_conns", pc.MaxConns),
	)
	return &DatabaseClients{Pool: pool, DB: stdlib.OpenDBFromPool(pool)}, nil
}

// AutoMigrate applies the matrix schema and then River's queue schema.
func (c *DatabaseClients) AutoMigrate(ctx context.Context) error {
	if err := repository.Migrate(ctx, c.DB); err != nil {
		return err
	}
	logger.Info("Matrix schema up to date")

	applied, err := c.migrateRiver(ctx)
	if err != nil {
		return err
	}
	logger.Info("River schema up to date", zap.Int("versions_applied", applied))
	return nil
}

func (c *DatabaseClients) migrateRiver(ctx context.Context) (int, error) {
	migrator, err := rivermigrate.New(riverpgxv5.New(c.Pool), nil)
	if err != nil {
		return 0, fmt.Errorf("create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return 0, fmt.Errorf("river migrate up: %w", err)
	}
	return len(res.Versions), nil
}

// InitRiverClient creates the River client for workers and periodic.
// The client is not started; Application.Start does that.
func (c *DatabaseClients) InitRiverClient(workers *river.Workers, periodic []*river.PeriodicJob, cfg config.RiverConfig) error {
	client, err := river.NewClient(riverpgxv5.New(c.Pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers:                     workers,
		PeriodicJobs:                periodic,
		CompletedJobRetentionPeriod: cfg.CompletedJobRetentionPeriod,
	})
	if err != nil {
		return fmt.Errorf("create river client: %w", err)
	}
	c.RiverClient = client
	return nil
}

// Ping reports whether the pool can reach the database. It backs the
// readiness probe.
func (c *DatabaseClients) Ping(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}

// Close closes the sql.DB wrapper and then the pool.
func (c *DatabaseClients) Close() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
