// Package app is the composition root. Bootstrap only orchestrates; modules
// own their wiring.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"vme-analyzer.io/analyzer/internal/api/handlers"
	"vme-analyzer.io/analyzer/internal/app/modules"
	"vme-analyzer.io/analyzer/internal/config"
	"vme-analyzer.io/analyzer/internal/infrastructure"
	"vme-analyzer.io/analyzer/internal/pkg/worker"
)

// Application is a fully wired analyzer process.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Modules []modules.Module

	shutdownOnce sync.Once
}

// Bootstrap builds the infrastructure, the classification and admin modules
// and the HTTP router. Module order matters: the admin module reads the
// store the infrastructure created, the classification module does not
// depend on it.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	mods := []modules.Module{
		modules.NewClassificationModule(infra),
		modules.NewAdminModule(infra),
	}
	if err := registerJobs(infra, mods); err != nil {
		infra.Close()
		return nil, err
	}

	server := handlers.NewServer(modules.NewServerDeps(mods))
	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, modules.NewJWTConfig(cfg.Security)),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Modules: mods,
	}, nil
}

func registerJobs(infra *modules.Infrastructure, mods []modules.Module) error {
	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, mod := range mods {
		mod.RegisterWorkers(workers)
		periodic = append(periodic, mod.PeriodicJobs()...)
	}
	if err := infra.InitRiver(workers, periodic); err != nil {
		return fmt.Errorf("init river workers: %w", err)
	}
	return nil
}
