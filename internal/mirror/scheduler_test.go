package mirror

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/izharus/re-backup/internal/notify"
)

func waitResult(t *testing.T, ch <-chan *Result) *Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a cycle")
		return nil
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the loop to stop")
		return nil
	}
}

func TestNewSchedulerValidation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := newSyncer(t, fsys, Options{})

	tests := []struct {
		name    string
		syncer  *Syncer
		sched   Schedule
		wantErr bool
	}{
		{"valid", s, Schedule{Interval: time.Minute}, false},
		{"nil syncer", nil, Schedule{Interval: time.Minute}, true},
		{"zero interval", s, Schedule{}, true},
		{"negative interval", s, Schedule{Interval: -time.Minute}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.syncer, tt.sched)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewScheduler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchedulerFirstCycleImmediate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/src", map[string]string{"a.txt": "1"})

	s := newSyncer(t, fsys, Options{})
	fc := clockwork.NewFakeClock()
	cycles := make(chan *Result, 8)
	sched, err := NewScheduler(s, Schedule{
		Interval: time.Minute,
		Clock:    fc,
		OnCycle:  func(_ uint64, r *Result) { cycles <- r },
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	// The first cycle runs without the clock moving at all.
	first := waitResult(t, cycles)
	if got := len(first.Copied()); got != 1 {
		t.Errorf("first cycle copied %d files, want 1", got)
	}
	if got := readFile(t, fsys, "/dst/a.txt"); got != "1" {
		t.Errorf("a.txt content = %q, want %q", got, "1")
	}

	// The loop is now parked on its timer. Drop in another file and
	// advance one interval.
	fc.BlockUntil(1)
	writeFiles(t, fsys, "/src", map[string]string{"b.txt": "2"})
	fc.Advance(time.Minute)

	second := waitResult(t, cycles)
	copied := second.Copied()
	if len(copied) != 1 || copied[0].Name != "b.txt" {
		t.Errorf("second cycle copied %v, want just b.txt", copied)
	}

	cancel()
	if err := waitErr(t, done); err != nil {
		t.Errorf("Run() after cancel = %v, want nil", err)
	}
}

func TestSchedulerStopsWhenCancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/src", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	s := newSyncer(t, fsys, Options{})
	sched, err := NewScheduler(s, Schedule{
		Interval: time.Minute,
		Clock:    clockwork.NewFakeClock(),
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	// The loop notices the cancelled context after its first cycle and
	// exits without ever touching the timer.
	if err := waitErr(t, done); err != nil {
		t.Errorf("Run() = %v, want nil on cancellation", err)
	}
}

func TestSchedulerStopPolicy(t *testing.T) {
	fsys := afero.NewMemMapFs()

	// No source directory at all, so the very first listing fails.
	s := newSyncer(t, fsys, Options{})
	rec := notify.NewRecorder()
	sched, err := NewScheduler(s, Schedule{
		Interval: time.Minute,
		Clock:    clockwork.NewFakeClock(),
		Notifier: rec,
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- sched.Run(context.Background()) }()

	runErr := waitErr(t, done)
	if runErr == nil {
		t.Fatal("Run() should return the listing error under a stop policy")
	}
	var lerr *ListingError
	if !errors.As(runErr, &lerr) {
		t.Fatalf("Run() error = %T, want *ListingError", runErr)
	}

	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if events[0].Severity != notify.SeverityError {
		t.Errorf("Severity = %s, want %s", events[0].Severity, notify.SeverityError)
	}
	if events[0].Op != notify.OpListing {
		t.Errorf("Op = %s, want %s", events[0].Op, notify.OpListing)
	}
	if events[0].Path != "/src" {
		t.Errorf("Path = %s, want /src", events[0].Path)
	}
}

func TestSchedulerContinuePolicy(t *testing.T) {
	fsys := afero.NewMemMapFs()

	// The source is missing on the first cycle and appears before the
	// second. A continue policy rides out the bad cycle.
	s := newSyncer(t, fsys, Options{})
	fc := clockwork.NewFakeClock()
	rec := notify.NewRecorder()
	cycles := make(chan *Result, 8)
	sched, err := NewScheduler(s, Schedule{
		Interval:        time.Minute,
		ContinueOnError: true,
		Clock:           fc,
		Notifier:        rec,
		OnCycle:         func(_ uint64, r *Result) { cycles <- r },
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	// Once the loop is sleeping, the failed cycle has been reported.
	fc.BlockUntil(1)
	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if events[0].Severity != notify.SeverityWarning {
		t.Errorf("Severity = %s, want %s under a continue policy", events[0].Severity, notify.SeverityWarning)
	}

	writeFiles(t, fsys, "/src", map[string]string{"a.txt": "1"})
	fc.Advance(time.Minute)

	result := waitResult(t, cycles)
	if got := len(result.Copied()); got != 1 {
		t.Errorf("recovery cycle copied %d files, want 1", got)
	}

	cancel()
	if err := waitErr(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestSchedulerNotifiesFileFailures(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFiles(t, mem, "/src", map[string]string{"a.txt": "x"})
	writeFiles(t, mem, "/dst", map[string]string{"stale.txt": "y"})

	s := newSyncer(t, afero.NewReadOnlyFs(mem), Options{})
	fc := clockwork.NewFakeClock()
	rec := notify.NewRecorder()
	cycles := make(chan *Result, 8)
	sched, err := NewScheduler(s, Schedule{
		Interval: time.Minute,
		Clock:    fc,
		Notifier: rec,
		OnCycle:  func(_ uint64, r *Result) { cycles <- r },
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	result := waitResult(t, cycles)
	if got := len(result.Failed()); got != 2 {
		t.Fatalf("Failed() = %d, want 2", got)
	}

	var ops []notify.Op
	for _, e := range rec.Events() {
		if e.Severity != notify.SeverityError {
			t.Errorf("file failure severity = %s, want %s", e.Severity, notify.SeverityError)
		}
		ops = append(ops, e.Op)
	}
	slices.Sort(ops)
	if want := []notify.Op{notify.OpCopy, notify.OpDelete}; !slices.Equal(ops, want) {
		t.Errorf("notified ops = %v, want %v", ops, want)
	}

	cancel()
	if err := waitErr(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestSchedulerSurvivesSinkFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()

	s := newSyncer(t, fsys, Options{})
	fc := clockwork.NewFakeClock()
	rec := notify.NewRecorder()
	rec.FailWith(errors.New("sink down"))
	sched, err := NewScheduler(s, Schedule{
		Interval:        time.Minute,
		ContinueOnError: true,
		Clock:           fc,
		Notifier:        rec,
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	// The loop reaches its timer even though the sink errored.
	fc.BlockUntil(1)
	if got := rec.Count(); got != 1 {
		t.Errorf("recorded %d events, want 1", got)
	}

	cancel()
	if err := waitErr(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}
