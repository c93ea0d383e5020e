package domain

import (
	"context"
	"errors"
	"time"
)

// Reminder window defaults: an event is due when its reminder time lies in [now-5m, now+30m].
const (
	DefaultLookBack  = 5 * time.Minute
	DefaultLookAhead = 30 * time.Minute
)

// ErrLockNotAcquired is returned when another pass already holds an event's reminder lock.
var ErrLockNotAcquired = errors.New("reminder lock held by another pass")

// ReminderWindow bounds the reminder times considered by one pass, relative to the scan instant.
type ReminderWindow struct {
	LookBack  time.Duration
	LookAhead time.Duration
}

// DefaultReminderWindow returns the [now-5m, now+30m] window.
func DefaultReminderWindow() ReminderWindow {
	return ReminderWindow{LookBack: DefaultLookBack, LookAhead: DefaultLookAhead}
}

// Bounds returns the inclusive window [now-LookBack, now+LookAhead].
func (w ReminderWindow) Bounds(now time.Time) (from, to time.Time) {
	return now.Add(-w.LookBack), now.Add(w.LookAhead)
}

// IsEligible reports whether e would be selected by a pass at now within w.
func (w ReminderWindow) IsEligible(e *Event, now time.Time) bool {
	if e == nil || e.ReminderSent || e.ReminderTimeCalculated == nil || !e.Start.After(now) {
		return false
	}
	from, to := w.Bounds(now)
	at := *e.ReminderTimeCalculated
	return !at.Before(from) && !at.After(to)
}

// PassResult summarizes one scan-and-notify pass.
// swagger:model PassResult
type PassResult struct {
	PassID  string `json:"pass_id"`
	Found   int    `json:"found"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// ReminderService runs reminder passes.
type ReminderService interface {
	// CheckEvents performs one pass at now. Only a failure to query due events is returned;
	// per-event failures are logged and counted in the result.
	CheckEvents(ctx context.Context, now time.Time) (*PassResult, error)
}

// ReminderLocker guards one event against concurrent passes.
// Lock returns ErrLockNotAcquired when the event is held elsewhere; otherwise the returned
// function releases this claim only.
type ReminderLocker interface {
	Lock(ctx context.Context, eventID string) (unlock func(context.Context) error, err error)
}
