package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// Start launches the River client when the postgres store is active. With
// the memory store there is nothing to start.
func (a *Application) Start(ctx context.Context) error {
	if a.DB == nil || a.DB.RiverClient == nil {
		return nil
	}
	if err := a.DB.RiverClient.Start(ctx); err != nil {
		return fmt.Errorf("start river client: %w", err)
	}
	logger.Info("Matrix refresh jobs running")
	return nil
}

// Shutdown releases components in reverse dependency order: job consumers,
// modules, worker pools, then the database pool. It is safe to call more
// than once.
func (a *Application) Shutdown() {
	a.shutdownOnce.Do(func() {
		ctx := context.Background()

		if a.DB != nil && a.DB.RiverClient != nil {
			if err := a.DB.RiverClient.Stop(ctx); err != nil {
				logger.Error("Stop river client", zap.Error(err))
			}
		}
		for i := len(a.Modules) - 1; i >= 0; i-- {
			mod := a.Modules[i]
			if mod == nil {
				continue
			}
			if err := mod.Shutdown(ctx); err != nil {
				logger.Warn("Module shutdown", zap.String("module", mod.Name()), zap.Error(err))
			}
		}
		if a.Pools != nil {
			a.Pools.Shutdown()
		}
		if a.DB != nil {
			a.DB.Close()
		}
	})
}
