// Package notify delivers failure events from the sync loop to pluggable
// sinks. The loop reports every listing, copy, and delete failure exactly
// once; sinks decide what to do with them. A broken sink never takes the
// loop down with it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Severity classifies how serious an event is for the sync loop.
type Severity string

const (
	// SeverityWarning marks failures the loop recovers from on its own.
	SeverityWarning Severity = "warning"
	// SeverityError marks failures that lose work or end the loop.
	SeverityError Severity = "error"
)

// Op identifies the operation that failed.
type Op string

const (
	OpListing Op = "listing"
	OpCopy    Op = "copy"
	OpDelete  Op = "delete"
)

// Event describes a single failure observed during a sync cycle.
type Event struct {
	// Time is when the failure was observed.
	Time time.Time
	// Severity classifies the failure.
	Severity Severity
	// Op is the operation that failed.
	Op Op
	// Path is the file name or directory the operation targeted.
	Path string
	// Err is the underlying error.
	Err error
}

// NewEvent builds an event stamped with the current time.
func NewEvent(severity Severity, op Op, path string, err error) Event {
	return Event{
		Time:     time.Now(),
		Severity: severity,
		Op:       op,
		Path:     path,
		Err:      err,
	}
}

// Message returns a single human-readable line describing the event.
func (e Event) Message() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed for %s", e.Op, e.Path)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Path, e.Err)
}

// Notifier receives failure events from the sync loop. Implementations
// must return promptly; long-running work belongs behind a timeout. A
// returned error is logged by the caller and otherwise ignored.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi fans events out to several sinks. Every sink sees every event;
// a panicking sink is recovered and reported as an error alongside the
// others.
type Multi struct {
	sinks []Notifier
}

// NewMulti combines sinks into a single Notifier. Nil sinks are skipped.
func NewMulti(sinks ...Notifier) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Notify delivers the event to every sink and joins their errors.
func (m *Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := safeNotify(ctx, s, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func safeNotify(ctx context.Context, sink Notifier, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return sink.Notify(ctx, event)
}
