package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/izharus/re-backup/internal/logging"
	"github.com/izharus/re-backup/internal/notify"
)

// Schedule is the immutable loop configuration handed to NewScheduler.
type Schedule struct {
	// Interval is the pause between the end of one cycle and the start
	// of the next. Required and positive.
	Interval time.Duration

	// ContinueOnError keeps the loop alive when a directory cannot be
	// listed: the failed cycle is abandoned and retried after Interval.
	// When false, the first listing failure ends the loop.
	ContinueOnError bool

	// Notifier receives one event per failure. Optional.
	Notifier notify.Notifier

	// OnCycle is invoked after every completed cycle with its sequence
	// number and result. Optional.
	OnCycle func(cycle uint64, result *Result)

	// Clock drives the loop's sense of time. Defaults to the wall
	// clock; tests substitute a fake.
	Clock clockwork.Clock
}

// Scheduler runs mirror cycles on a fixed interval until cancelled.
type Scheduler struct {
	syncer          *Syncer
	interval        time.Duration
	continueOnError bool
	notifier        notify.Notifier
	onCycle         func(uint64, *Result)
	clock           clockwork.Clock
}

// NewScheduler validates the schedule and binds it to a syncer. All
// validation happens here, before any cycle can run.
func NewScheduler(syncer *Syncer, sched Schedule) (*Scheduler, error) {
	if syncer == nil {
		return nil, errors.New("syncer must not be nil")
	}
	if sched.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", sched.Interval)
	}
	clock := sched.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		syncer:          syncer,
		interval:        sched.Interval,
		continueOnError: sched.ContinueOnError,
		notifier:        sched.Notifier,
		onCycle:         sched.OnCycle,
		clock:           clock,
	}, nil
}

// Run executes mirror cycles until ctx is cancelled. The first cycle
// starts immediately. Cancellation is a normal shutdown and returns nil;
// the only error Run returns is a listing failure when the schedule says
// to stop on one.
func (s *Scheduler) Run(ctx context.Context) error {
	logging.Info("sync loop starting",
		logging.Source(s.syncer.Source()),
		logging.Dest(s.syncer.Dest()),
		slog.Duration("interval", s.interval),
	)

	for cycle := uint64(1); ; cycle++ {
		if err := s.runCycle(ctx, cycle); err != nil {
			return err
		}
		if ctx.Err() != nil {
			logging.Info("sync loop stopped")
			return nil
		}
		if !s.sleep(ctx) {
			logging.Info("sync loop stopped")
			return nil
		}
	}
}

// runCycle executes one cycle and reports its failures. A non-nil return
// ends the loop.
func (s *Scheduler) runCycle(ctx context.Context, cycle uint64) error {
	result, err := s.syncer.RunCycle(ctx)
	if err != nil {
		dir := ""
		var lerr *ListingError
		if errors.As(err, &lerr) {
			dir = lerr.Dir
		}

		severity := notify.SeverityError
		if s.continueOnError {
			severity = notify.SeverityWarning
		}
		s.notifyEvent(ctx, notify.NewEvent(severity, notify.OpListing, dir, err))

		if !s.continueOnError {
			logging.Error("sync loop stopping",
				logging.Cycle(cycle),
				logging.Err(err),
			)
			return err
		}
		logging.Warn("cycle abandoned, retrying next interval",
			logging.Cycle(cycle),
			logging.Err(err),
		)
		return nil
	}

	for _, f := range result.Failed() {
		s.notifyEvent(ctx, notify.NewEvent(notify.SeverityError, eventOp(f.Op), f.Name, f.Err))
	}

	if result.Changed() || !result.Success() {
		logging.Info("cycle completed",
			logging.Cycle(cycle),
			slog.Int("copied", len(result.Copied())),
			slog.Int("deleted", len(result.Deleted())),
			slog.Int("failed", len(result.Failed())),
			logging.Duration(result.Duration),
		)
	} else {
		logging.Debug("cycle completed, nothing to do",
			logging.Cycle(cycle),
		)
	}

	if s.onCycle != nil {
		s.onCycle(cycle, result)
	}
	return nil
}

// notifyEvent delivers one event to the sink. A failing sink is logged
// and otherwise ignored; it never disturbs the loop.
func (s *Scheduler) notifyEvent(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		logging.Warn("notification sink failed",
			logging.Err(err),
		)
	}
}

// sleep waits one interval or until cancellation, whichever comes first.
// A timer rather than a ticker: the interval is measured from the end of
// one cycle to the start of the next, so a slow cycle delays the
// following one instead of ticks queueing up behind it.
func (s *Scheduler) sleep(ctx context.Context) bool {
	timer := s.clock.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// eventOp maps a file operation to its notification counterpart.
func eventOp(op Op) notify.Op {
	if op == OpDelete {
		return notify.OpDelete
	}
	return notify.OpCopy
}
