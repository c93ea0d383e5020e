package domain

import (
	"context"
	"errors"
	"time"
)

// DefaultReminderMinutes is how long before an event's start the reminder fires when the producer sets no value.
const DefaultReminderMinutes = 30

// ErrEventNotFound is returned when an event lookup or update matches no row.
var ErrEventNotFound = errors.New("event not found")

// Event represents a scheduled event owned by a user.
// swagger:model Event
type Event struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Start                  time.Time  `json:"start"`
	End                    *time.Time `json:"end,omitempty"`
	ReminderMinutes        int        `json:"reminder_minutes"`
	ReminderTimeCalculated *time.Time `json:"reminder_time_calculated,omitempty"`
	ReminderSent           bool       `json:"reminder_sent"`
	UserID                 string     `json:"user_id"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NewEvent returns an unsent Event for userID with its reminder time derived from start and reminderMinutes.
// A non-positive reminderMinutes falls back to DefaultReminderMinutes. ID is set by the store.
func NewEvent(title string, start time.Time, reminderMinutes int, userID string, now time.Time) *Event {
	if reminderMinutes <= 0 {
		reminderMinutes = DefaultReminderMinutes
	}
	at := CalculateReminderTime(start, reminderMinutes)
	return &Event{
		Title:                  title,
		Start:                  start,
		ReminderMinutes:        reminderMinutes,
		ReminderTimeCalculated: &at,
		UserID:                 userID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// CalculateReminderTime returns the instant a reminder for an event starting at start should fire.
func CalculateReminderTime(start time.Time, reminderMinutes int) time.Time {
	return start.Add(-time.Duration(reminderMinutes) * time.Minute)
}

// EventRepository defines the interface for event storage used by the reminder scanner.
type EventRepository interface {
	// ListDueForReminder returns unsent events starting after now whose reminder time lies in [from, to].
	ListDueForReminder(ctx context.Context, now, from, to time.Time) ([]*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	// MarkReminderSent sets reminder_sent for the event. Returns ErrEventNotFound when no row matches.
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}
