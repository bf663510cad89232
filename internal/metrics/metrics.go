// Package metrics exposes Prometheus instrumentation for similarity cycles.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCompleted = "completed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"

	KindCrossSource = "cross_source"
	KindSameSource  = "same_source"
)

var (
	SimilarityCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfinder_similarity_cycles_total",
			Help: "Total number of similarity cycles by outcome",
		},
		[]string{"outcome"}, // "completed", "skipped", "failed"
	)

	SimilarityCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsfinder_similarity_cycle_duration_seconds",
			Help:    "Duration of non-skipped similarity cycles in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SimilarityMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsfinder_similarity_matches_total",
			Help: "Total number of matched article pairs by kind",
		},
		[]string{"kind"},
	)

	SimilarityCorpusSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsfinder_similarity_corpus_size",
			Help: "Number of articles compared in the last similarity cycle",
		},
	)
)

// RecordCycle records one finished cycle. Skipped cycles only bump the counter.
func RecordCycle(skipped bool, duration time.Duration, articles, matches, sameSource int, err error) {
	switch {
	case err != nil:
		SimilarityCycles.WithLabelValues(OutcomeFailed).Inc()
		SimilarityCycleDuration.Observe(duration.Seconds())
		return
	case skipped:
		SimilarityCycles.WithLabelValues(OutcomeSkipped).Inc()
		return
	}

	SimilarityCycles.WithLabelValues(OutcomeCompleted).Inc()
	SimilarityCycleDuration.Observe(duration.Seconds())
	SimilarityCorpusSize.Set(float64(articles))
	SimilarityMatches.WithLabelValues(KindSameSource).Add(float64(sameSource))
	SimilarityMatches.WithLabelValues(KindCrossSource).Add(float64(matches - sameSource))
}
