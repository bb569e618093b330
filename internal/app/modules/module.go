// Package modules wires the analyzer's components for the composition root.
//
// Import Path: vme-analyzer.io/analyzer/internal/app/modules
package modules

import (
	"context"

	"github.com/riverqueue/river"

	"vme-analyzer.io/analyzer/internal/api/handlers"
)

// Module owns the construction of one feature area. Bootstrap calls the
// methods in declaration order for every module before serving.
type Module interface {
	Name() string

	// ContributeServerDeps fills the handler dependencies the module owns.
	ContributeServerDeps(*handlers.ServerDeps)

	// RegisterWorkers adds the module's River workers. It runs even without
	// a database; the registry is then discarded.
	RegisterWorkers(*river.Workers)

	PeriodicJobs() []*river.PeriodicJob

	// Shutdown releases module-local resources after the River client stops.
	Shutdown(context.Context) error
}
