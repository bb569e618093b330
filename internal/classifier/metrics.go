package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vme_classification_batch_duration_seconds",
			Help:    "Duration of classifying one inventory batch in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	batchRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vme_classification_batch_rows",
			Help:    "Number of VM rows per classified batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	rowsByTier = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vme_classification_rows_total",
			Help: "Total number of classified VM rows by tier",
		},
		[]string{"tier"},
	)

	ruleHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vme_classification_rule_total",
			Help: "Total number of rows decided by each tier rule",
		},
		[]string{"rule"},
	)

	rowFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vme_classification_row_failures_total",
			Help: "Total number of rows that failed and were reported as needs_info",
		},
	)

	matchConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vme_normalizer_match_confidence",
			Help:    "Confidence of the best OS pattern match per row",
			Buckets: []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		},
	)
)
