package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/newsfinder/internal/globaltime"
)

const DefaultPollInterval = 3 * time.Second

// ErrCycleInFlight is returned when a cycle is requested while one is running.
var ErrCycleInFlight = errors.New("similarity cycle already running")

type cycleRunner interface {
	RunCycle(ctx context.Context, force bool) (CycleResult, error)
}

type SchedulerOptions struct {
	Interval time.Duration
	Poll     time.Duration
	// Now overrides the clock used for pacing.
	Now func() time.Time
}

// Scheduler runs similarity cycles at a fixed average cadence.
type Scheduler struct {
	runner   cycleRunner
	logger   zerolog.Logger
	interval time.Duration
	poll     time.Duration
	now      func() time.Time
	running  atomic.Bool
}

func NewScheduler(runner cycleRunner, logger zerolog.Logger, opts SchedulerOptions) *Scheduler {
	if opts.Poll <= 0 {
		opts.Poll = DefaultPollInterval
	}
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = globaltime.Now
	}
	return &Scheduler{
		runner:   runner,
		logger:   logger,
		interval: opts.Interval,
		poll:     opts.Poll,
		now:      opts.Now,
	}
}

// Run executes a forced cycle immediately, then a regular cycle each time
// another interval has elapsed. It returns nil when ctx is cancelled and the
// cycle error otherwise.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.Trigger(ctx, true); err != nil {
		return err
	}

	p := newPacer(s.interval, s.now())
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.advance(s.now()) {
				continue
			}
			if _, err := s.Trigger(ctx, false); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}

// Trigger runs one cycle unless another is in flight.
func (s *Scheduler) Trigger(ctx context.Context, force bool) (CycleResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return CycleResult{}, ErrCycleInFlight
	}
	defer s.running.Store(false)

	result, err := s.runner.RunCycle(ctx, force)
	if err != nil {
		return result, fmt.Errorf("similarity cycle: %w", err)
	}
	return result, nil
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// pacer accumulates elapsed time as a fraction of the interval and fires once
// the fraction reaches one, carrying the remainder into the next period.
type pacer struct {
	interval time.Duration
	last     time.Time
	progress float64
}

func newPacer(interval time.Duration, start time.Time) *pacer {
	return &pacer{interval: interval, last: start}
}

func (p *pacer) advance(now time.Time) bool {
	elapsed := now.Sub(p.last)
	p.last = now
	if elapsed > 0 {
		p.progress += float64(elapsed) / float64(p.interval)
	}
	if p.progress < 1 {
		return false
	}
	p.progress--
	// Missed periods are not replayed.
	if p.progress >= 1 {
		p.progress -= math.Floor(p.progress)
	}
	return true
}
