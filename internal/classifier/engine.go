// Package classifier assigns each VM in an inventory batch one of six HPE VME
// compatibility tiers, with a reason and migration guidance.
//
// A batch never fails as a whole: a row that cannot be classified is reported
// as needs_info with a "Parse error" reason and the rest of the batch is
// unaffected.
//
// Import Path: vme-analyzer.io/analyzer/internal/classifier
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/normalizer"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
	"vme-analyzer.io/analyzer/internal/pkg/worker"
)

const (
	noteFallbackUsed = "Primary OS empty — used fallback column"

	// DefaultParallelThreshold is the batch size from which rows are spread
	// over the worker pool.
	DefaultParallelThreshold = 256
)

// OSNormalizer reads a raw OS string. *normalizer.Normalizer implements it.
type OSNormalizer interface {
	Normalize(raw string) normalizer.NormalizedOS
}

// Engine classifies VM rows against the compatibility matrix.
type Engine struct {
	store             Store
	normalizer        OSNormalizer
	pool              *worker.Pool
	parallelThreshold int
	log               *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n OSNormalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithPool classifies batches of at least threshold rows concurrently on pool.
// A threshold <= 0 selects DefaultParallelThreshold.
func WithPool(pool *worker.Pool, threshold int) Option {
	return func(e *Engine) {
		e.pool = pool
		e.parallelThreshold = threshold
		if threshold <= 0 {
			e.parallelThreshold = DefaultParallelThreshold
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine reading matrix and guidance data from store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:             store,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("classifier")
	}
	if e.normalizer == nil {
		e.normalizer = normalizer.New(normalizer.WithLogger(e.log.Named("normalizer")))
	}
	return e
}

// Outcome is the result of classifying one row: either VM is set and Err is
// nil, or Err holds the failure that prevented classification.
type Outcome struct {
	VM  domain.ClassifiedVM
	Err error
}

// ClassifyAll classifies every row. The result has the same length and order
// as rows; failing rows are replaced by a needs_info record.
func (e *Engine) ClassifyAll(ctx context.Context, rows []domain.VMInputRow) []domain.ClassifiedVM {
	start := time.Now()

	outcomes := make([]Outcome, len(rows))
	if e.pool != nil && len(rows) >= e.parallelThreshold {
		e.pool.RunEach(ctx, len(rows), func(ctx context.Context, i int) {
			outcomes[i] = e.attempt(ctx, rows[i])
		})
	} else {
		for i := range rows {
			outcomes[i] = e.attempt(ctx, rows[i])
		}
	}

	results := make([]domain.ClassifiedVM, len(rows))
	for i, o := range outcomes {
		if o.Err != nil {
			e.log.Warn("classify VM failed",
				zap.String("vm", rows[i].Name),
				zap.Int("row_index", rows[i].RowIndex),
				zap.Error(o.Err),
			)
			rowFailures.Inc()
			results[i] = e.failureResult(ctx, rows[i], o.Err)
			continue
		}
		results[i] = o.VM
	}

	counts := make(map[string]int, len(domain.AllTiers))
	for _, r := range results {
		counts[r.Tier.String()]++
		rowsByTier.WithLabelValues(r.Tier.String()).Inc()
	}
	batchRows.Observe(float64(len(rows)))
	batchDuration.Observe(time.Since(start).Seconds())
	e.log.Info("classification complete",
		zap.Int("vms", len(results)),
		zap.Any("tiers", counts),
	)
	return results
}

// attempt classifies one row, capturing returned errors and panics.
func (e *Engine) attempt(ctx context.Context, row domain.VMInputRow) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("%v", r)}
		}
	}()
	vm, err := e.ClassifyOne(ctx, row)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{VM: vm}
}

// ClassifyOne runs the full pipeline for one row: OS string selection,
// normalization, tier rules, guidance and notes. Errors come only from the
// matrix store.
func (e *Engine) ClassifyOne(ctx context.Context, row domain.VMInputRow) (domain.ClassifiedVM, error) {
	raw, usedFallback := SelectOSString(row)
	parsed := e.normalizer.Normalize(raw)
	matchConfidence.Observe(parsed.Confidence)

	f := facts{raw: raw, os: parsed}
	d, ruleName, err := e.assignTier(ctx, f)
	if err != nil {
		return domain.ClassifiedVM{}, err
	}
	ruleHits.WithLabelValues(ruleName).Inc()

	return domain.ClassifiedVM{
		Name:              row.Name,
		HostCluster:       row.HostCluster,
		OSRaw:             raw,
		OSInterpreted:     parsed.Interpreted,
		Tier:              d.tier,
		TierColor:         d.tier.Color(),
		Reason:            d.reason,
		MigrationGuidance: e.resolveGuidance(ctx, d.tier, parsed.Family),
		Notes:             buildNotes(parsed, usedFallback),
	}, nil
}

// failureResult is the record reported for a row whose classification failed.
func (e *Engine) failureResult(ctx context.Context, row domain.VMInputRow, err error) domain.ClassifiedVM {
	return domain.ClassifiedVM{
		Name:              row.Name,
		HostCluster:       row.HostCluster,
		OSRaw:             row.PrimaryOS,
		OSInterpreted:     normalizer.Unknown,
		Tier:              domain.TierNeedsInfo,
		TierColor:         domain.TierNeedsInfo.Color(),
		Reason:            "Parse error: " + err.Error(),
		MigrationGuidance: e.fallbackGuidance(ctx),
	}
}

// fallbackGuidance resolves needs_info guidance for a failed row. A store that
// panics here must not take the batch down with it.
func (e *Engine) fallbackGuidance(ctx context.Context) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("guidance lookup panicked", zap.Any("panic", r))
			text = NoGuidance
		}
	}()
	return e.resolveGuidance(ctx, domain.TierNeedsInfo, "")
}

// SelectOSString returns the OS string to classify and whether the fallback
// column was used. The primary value wins whenever it is non-empty.
func SelectOSString(row domain.VMInputRow) (string, bool) {
	if row.PrimaryOS != "" {
		return row.PrimaryOS, false
	}
	if row.FallbackOS != "" {
		return row.FallbackOS, true
	}
	return "", false
}

func buildNotes(parsed normalizer.NormalizedOS, usedFallback bool) *string {
	var parts []string
	if parsed.LowConfidence {
		parts = append(parts, fmt.Sprintf("Low confidence match: %.2f", parsed.Confidence))
	}
	if usedFallback {
		parts = append(parts, noteFallbackUsed)
	}
	if len(parts) == 0 {
		return nil
	}
	notes := strings.Join(parts, "; ")
	return &notes
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
