package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCycleCompleted(t *testing.T) {
	beforeCompleted := testutil.ToFloat64(SimilarityCycles.WithLabelValues(OutcomeCompleted))
	beforeSame := testutil.ToFloat64(SimilarityMatches.WithLabelValues(KindSameSource))
	beforeCross := testutil.ToFloat64(SimilarityMatches.WithLabelValues(KindCrossSource))

	RecordCycle(false, 2*time.Second, 12, 5, 2, nil)

	if got := testutil.ToFloat64(SimilarityCycles.WithLabelValues(OutcomeCompleted)) - beforeCompleted; got != 1 {
		t.Fatalf("expected completed counter +1, got %v", got)
	}
	if got := testutil.ToFloat64(SimilarityMatches.WithLabelValues(KindSameSource)) - beforeSame; got != 2 {
		t.Fatalf("expected same-source matches +2, got %v", got)
	}
	if got := testutil.ToFloat64(SimilarityMatches.WithLabelValues(KindCrossSource)) - beforeCross; got != 3 {
		t.Fatalf("expected cross-source matches +3, got %v", got)
	}
	if got := testutil.ToFloat64(SimilarityCorpusSize); got != 12 {
		t.Fatalf("expected corpus size 12, got %v", got)
	}
}

func TestRecordCycleSkippedAndFailed(t *testing.T) {
	beforeSkipped := testutil.ToFloat64(SimilarityCycles.WithLabelValues(OutcomeSkipped))
	beforeFailed := testutil.ToFloat64(SimilarityCycles.WithLabelValues(OutcomeFailed))

	RecordCycle(true, 0, 0, 0, 0, nil)
	RecordCycle(false, time.Second, 0, 0, 0, errors.New("boom"))

	if got := testutil.ToFloat64(SimilarityCycles.WithLabelValues(OutcomeSkipped)) - beforeSkipped; got != 1 {
		t.Fatalf("expected skipped counter +1, got %v", got)
	}
	if got := testutil.ToFloat64(SimilarityCycles.WithLabelValues(OutcomeFailed)) - beforeFailed; got != 1 {
		t.Fatalf("expected failed counter +1, got %v", got)
	}
}
