package similarity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPacerCarriesFraction(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newPacer(4*time.Second, start)

	steps := []struct {
		after time.Duration
		fire  bool
	}{
		{after: 1 * time.Second, fire: false},
		{after: 2 * time.Second, fire: false},
		{after: 3 * time.Second, fire: false},
		{after: 4 * time.Second, fire: true},
		{after: 7 * time.Second, fire: false},
		{after: 9 * time.Second, fire: true},
		{after: 12 * time.Second, fire: true},
	}
	for _, step := range steps {
		if got := p.advance(start.Add(step.after)); got != step.fire {
			t.Fatalf("advance(+%s) = %v, want %v (progress %v)", step.after, got, step.fire, p.progress)
		}
	}
	if p.progress != 0 {
		t.Fatalf("expected no carry after firing on the boundary, got %v", p.progress)
	}
}

func TestPacerDoesNotReplayMissedIntervals(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newPacer(4*time.Second, start)

	if !p.advance(start.Add(10 * time.Second)) {
		t.Fatalf("expected fire after 2.5 intervals")
	}
	if p.progress != 0.5 {
		t.Fatalf("expected carry 0.5, got %v", p.progress)
	}
	if p.advance(start.Add(11 * time.Second)) {
		t.Fatalf("missed interval must not fire immediately")
	}
	if !p.advance(start.Add(12 * time.Second)) {
		t.Fatalf("expected fire once carry reaches one interval")
	}
}

func TestPacerIgnoresClockGoingBackwards(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newPacer(4*time.Second, start)

	if p.advance(start.Add(-time.Hour)) {
		t.Fatalf("backwards clock must not fire")
	}
	if p.progress != 0 {
		t.Fatalf("expected no progress, got %v", p.progress)
	}
}

type stubRunner struct {
	mu     sync.Mutex
	calls  []bool
	cancel context.CancelFunc
	stopAt int
	err    error
}

func (r *stubRunner) RunCycle(_ context.Context, force bool) (CycleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, force)
	if r.err != nil {
		return CycleResult{}, r.err
	}
	if len(r.calls) >= r.stopAt && r.cancel != nil {
		r.cancel()
	}
	return CycleResult{Forced: force, Skipped: !force}, nil
}

func TestSchedulerRunForcesFirstCycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runner := &stubRunner{cancel: cancel, stopAt: 3}
	scheduler := NewScheduler(runner, zerolog.Nop(), SchedulerOptions{
		Interval: time.Millisecond,
		Poll:     time.Millisecond,
	})

	if err := scheduler.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.calls) < 3 {
		t.Fatalf("expected at least 3 cycles, got %d", len(runner.calls))
	}
	if !runner.calls[0] {
		t.Fatalf("first cycle must be forced")
	}
	for i, forced := range runner.calls[1:] {
		if forced {
			t.Fatalf("cycle %d must not be forced", i+1)
		}
	}
}

func TestSchedulerRunStopsOnCycleError(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{err: ErrDatastoreUnavailable}
	scheduler := NewScheduler(runner, zerolog.Nop(), SchedulerOptions{
		Interval: time.Millisecond,
		Poll:     time.Millisecond,
	})

	err := scheduler.Run(context.Background())
	if !errors.Is(err, ErrDatastoreUnavailable) {
		t.Fatalf("expected ErrDatastoreUnavailable, got %v", err)
	}
}

func TestSchedulerTriggerRejectsConcurrentCycle(t *testing.T) {
	t.Parallel()

	scheduler := NewScheduler(&stubRunner{}, zerolog.Nop(), SchedulerOptions{})
	scheduler.running.Store(true)

	if _, err := scheduler.Trigger(context.Background(), true); !errors.Is(err, ErrCycleInFlight) {
		t.Fatalf("expected ErrCycleInFlight, got %v", err)
	}

	scheduler.running.Store(false)
	if _, err := scheduler.Trigger(context.Background(), true); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if scheduler.Running() {
		t.Fatalf("expected in-flight state cleared after cycle")
	}
}
