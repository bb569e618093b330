package modules

import (
	"context"

	"github.com/riverqueue/river"

	"vme-analyzer.io/analyzer/internal/api/handlers"
	"vme-analyzer.io/analyzer/internal/jobs"
)

// AdminModule owns the matrix store behind the admin API and the health
// checks, plus the periodic snapshot refresh of the cached store.
type AdminModule struct {
	infra *Infrastructure
}

func NewAdminModule(infra *Infrastructure) *AdminModule {
	return &AdminModule{infra: infra}
}

func (m *AdminModule) Name() string { return "admin" }

func (m *AdminModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Store = m.infra.Store
	if m.infra.DB != nil {
		deps.Database = m.infra.DB
	}
}

// RegisterWorkers adds the refresh worker when a snapshot cache is in use.
func (m *AdminModule) RegisterWorkers(workers *river.Workers) {
	if workers == nil || m.infra.Cache == nil {
		return
	}
	river.AddWorker(workers, jobs.NewMatrixRefreshWorker(m.infra.Cache))
}

func (m *AdminModule) PeriodicJobs() []*river.PeriodicJob {
	if m.infra.Cache == nil {
		return nil
	}
	return []*river.PeriodicJob{jobs.MatrixRefreshPeriodicJob(m.infra.Config.Matrix.RefreshInterval)}
}

func (m *AdminModule) Shutdown(context.Context) error { return nil }
