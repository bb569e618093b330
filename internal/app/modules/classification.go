package modules

import (
	"context"

	"github.com/riverqueue/river"

	"vme-analyzer.io/analyzer/internal/api/handlers"
	"vme-analyzer.io/analyzer/internal/classifier"
	"vme-analyzer.io/analyzer/internal/normalizer"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// ClassificationModule wires the normalizer and the classification engine.
type ClassificationModule struct {
	infra      *Infrastructure
	normalizer *normalizer.Normalizer
	engine     *classifier.Engine
}

// NewClassificationModule creates the module. Large batches run on the
// classify worker pool.
func NewClassificationModule(infra *Infrastructure) *ClassificationModule {
	n := normalizer.New(
		normalizer.WithThreshold(infra.Config.Classifier.FuzzyMatchThreshold),
		normalizer.WithLogger(logger.Named("normalizer")),
	)

	opts := []classifier.Option{classifier.WithNormalizer(n)}
	if infra.Pools != nil {
		opts = append(opts, classifier.WithPool(infra.Pools.Classify, infra.Config.Worker.ParallelThreshold))
	}

	return &ClassificationModule{
		infra:      infra,
		normalizer: n,
		engine:     classifier.New(infra.Store, opts...),
	}
}

func (m *ClassificationModule) Name() string { return "classification" }

func (m *ClassificationModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Engine = m.engine
	deps.Normalizer = m.normalizer
	deps.MaxBatchRows = m.infra.Config.Classifier.MaxBatchRows
}

func (m *ClassificationModule) RegisterWorkers(*river.Workers) {}

func (m *ClassificationModule) PeriodicJobs() []*river.PeriodicJob { return nil }

func (m *ClassificationModule) Shutdown(context.Context) error { return nil }
