// Package worker provides goroutine pool management.
//
// Goroutines are not started directly; concurrent work goes through a Pool
// with context propagation.
//
// Import Path: vme-analyzer.io/analyzer/internal/pkg/worker
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool *ants.Pool
	name string
}

// Pools is the worker pool collection.
type Pools struct {
	// General runs detached background work such as snapshot refreshes.
	General *Pool
	// Classify fans out row classification for large batches.
	Classify *Pool

	// serviceCtx is the service lifecycle context for detached tasks
	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// PoolConfig contains worker pool configuration.
type PoolConfig struct {
	GeneralPoolSize  int
	ClassifyPoolSize int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		GeneralPoolSize:  16,
		ClassifyPoolSize: 32,
	}
}

func newPool(name string, size int, expiry time.Duration) (*Pool, error) {
	log := logger.Named("worker").With(zap.String("pool", name))
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(func(v interface{}) {
			log.Error("worker panic recovered",
				zap.Any("panic", v),
				zap.Stack("stack"),
			)
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(expiry),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, name: name}, nil
}

// NewPools creates the worker pool collection.
func NewPools(ctx context.Context, cfg PoolConfig) (*Pools, error) {
	serviceCtx, serviceCancel := context.WithCancel(ctx)

	general, err := newPool("general", cfg.GeneralPoolSize, 10*time.Second)
	if err != nil {
		serviceCancel()
		return nil, err
	}

	classify, err := newPool("classify", cfg.ClassifyPoolSize, 30*time.Second)
	if err != nil {
		general.pool.Release()
		serviceCancel()
		return nil, err
	}

	return &Pools{
		General:       general,
		Classify:      classify,
		serviceCtx:    serviceCtx,
		serviceCancel: serviceCancel,
	}, nil
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Submit submits a context-aware task.
// If ctx is already cancelled, returns ctx.Err() without submitting. A task
// still queued when ctx is cancelled is skipped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := p.pool.Submit(func() {
		select {
		case <-ctx.Done():
			logger.Named("worker").Debug("task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		default:
		}
		task(ctx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// RunEach calls fn for every index in [0, n) on the pool and waits for all of
// them. Every index runs exactly once: work that cannot be queued runs on the
// calling goroutine. Cancellation of ctx is passed to fn but does not skip
// indexes.
func (p *Pool) RunEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	runCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		err := p.Submit(runCtx, func(context.Context) {
			defer wg.Done()
			fn(ctx, i)
		})
		if err != nil {
			fn(ctx, i)
			wg.Done()
		}
	}
	wg.Wait()
}

// SubmitDetached submits a background task bound to the service lifecycle
// instead of a request context. It survives request cancellation but stops at
// graceful shutdown.
func (p *Pools) SubmitDetached(poolName string, task Task) error {
	pool := p.General
	if poolName == p.Classify.name {
		pool = p.Classify
	}

	err := pool.pool.Submit(func() {
		select {
		case <-p.serviceCtx.Done():
			logger.Named("worker").Debug("detached task skipped: service shutting down",
				zap.String("pool", pool.name),
			)
			return
		default:
		}
		task(p.serviceCtx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Shutdown cancels the service context and waits for running tasks (max 30s).
func (p *Pools) Shutdown() {
	p.serviceCancel()

	const shutdownTimeout = 30 * time.Second
	log := logger.Named("worker")
	for _, pool := range []*Pool{p.General, p.Classify} {
		if err := pool.pool.ReleaseTimeout(shutdownTimeout); err != nil {
			log.Warn("pool shutdown timeout", zap.String("pool", pool.name), zap.Error(err))
		}
	}
}

// Metrics returns pool occupancy for the metrics collector.
func (p *Pools) Metrics() map[string]map[string]int {
	out := make(map[string]map[string]int, 2)
	for _, pool := range []*Pool{p.General, p.Classify} {
		out[pool.name] = map[string]int{
			"running": pool.pool.Running(),
			"free":    pool.pool.Free(),
			"cap":     pool.pool.Cap(),
		}
	}
	return out
}
