// Package jobs contains River background jobs.
//
// Import Path: vme-analyzer.io/analyzer/internal/jobs
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// DefaultMatrixRefreshInterval is used when no positive interval is configured.
const DefaultMatrixRefreshInterval = 5 * time.Minute

// Refresher reloads an in-process matrix snapshot from its backing store.
// *repository.CachedStore implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// MatrixRefreshArgs reloads the matrix snapshot so edits made by other
// replicas become visible.
type MatrixRefreshArgs struct{}

// Kind returns the job kind identifier for the periodic matrix refresh.
func (MatrixRefreshArgs) Kind() string { return "matrix_refresh" }

// InsertOpts drops a refresh when an identical one is already pending.
func (MatrixRefreshArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 3,
		UniqueOpts: river.UniqueOpts{
			ByQueue: true,
			ByArgs:  true,
		},
	}
}

// MatrixRefreshWorker refreshes the cached matrix store.
type MatrixRefreshWorker struct {
	river.WorkerDefaults[MatrixRefreshArgs]
	store Refresher
	log   *zap.Logger
}

// NewMatrixRefreshWorker creates a refresh worker for store.
func NewMatrixRefreshWorker(store Refresher) *MatrixRefreshWorker {
	return &MatrixRefreshWorker{store: store, log: logger.Named("jobs")}
}

// Timeout bounds one refresh.
func (w *MatrixRefreshWorker) Timeout(*river.Job[MatrixRefreshArgs]) time.Duration {
	return 30 * time.Second
}

// Work reloads the snapshot. The previous snapshot stays in place on failure.
func (w *MatrixRefreshWorker) Work(ctx context.Context, _ *river.Job[MatrixRefreshArgs]) error {
	if w == nil || w.store == nil {
		return fmt.Errorf("matrix refresh worker is not initialized")
	}

	start := time.Now()
	if err := w.store.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh matrix snapshot: %w", err)
	}
	if w.log != nil {
		w.log.Debug("matrix snapshot refreshed", zap.Duration("took", time.Since(start)))
	}
	return nil
}

// MatrixRefreshPeriodicJob schedules MatrixRefreshArgs every interval.
// Non-positive intervals fall back to DefaultMatrixRefreshInterval.
func MatrixRefreshPeriodicJob(interval time.Duration) *river.PeriodicJob {
	if interval <= 0 {
		interval = DefaultMatrixRefreshInterval
	}
	return river.NewPeriodicJob(
		river.PeriodicInterval(interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return MatrixRefreshArgs{}, nil
		},
		&river.PeriodicJobOpts{RunOnStart: false},
	)
}
