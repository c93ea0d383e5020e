package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderWindow_Bounds(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	from, to := DefaultReminderWindow().Bounds(now)
	assert.Equal(t, now.Add(-5*time.Minute), from)
	assert.Equal(t, now.Add(30*time.Minute), to)
}

func TestReminderWindow_IsEligible(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := DefaultReminderWindow()
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name  string
		event *Event
		want  bool
	}{
		{"due", &Event{Start: now.Add(20 * time.Minute), ReminderTimeCalculated: ptr(now.Add(10 * time.Minute))}, true},
		{"nil event", nil, false},
		{"already sent", &Event{Start: now.Add(20 * time.Minute), ReminderTimeCalculated: ptr(now.Add(10 * time.Minute)), ReminderSent: true}, false},
		{"no reminder time", &Event{Start: now.Add(20 * time.Minute)}, false},
		{"started", &Event{Start: now.Add(-5 * time.Minute), ReminderTimeCalculated: ptr(now)}, false},
		{"too far ahead", &Event{Start: now.Add(time.Hour), ReminderTimeCalculated: ptr(now.Add(40 * time.Minute))}, false},
		{"too far behind", &Event{Start: now.Add(time.Hour), ReminderTimeCalculated: ptr(now.Add(-6 * time.Minute))}, false},
		{"lower edge", &Event{Start: now.Add(time.Hour), ReminderTimeCalculated: ptr(now.Add(-5 * time.Minute))}, true},
		{"upper edge", &Event{Start: now.Add(time.Hour), ReminderTimeCalculated: ptr(now.Add(30 * time.Minute))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.IsEligible(tt.event, now))
		})
	}
}

func TestNewEvent_DerivesReminderTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(2 * time.Hour)

	e := NewEvent("Standup", start, 15, "user-1", now)
	assert.Equal(t, start.Add(-15*time.Minute), *e.ReminderTimeCalculated)
	assert.False(t, e.ReminderSent)
	assert.Equal(t, "user-1", e.UserID)

	e = NewEvent("Standup", start, 0, "user-1", now)
	assert.Equal(t, DefaultReminderMinutes, e.ReminderMinutes)
	assert.Equal(t, start.Add(-30*time.Minute), *e.ReminderTimeCalculated)
}

func TestUser_HasEmail(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.HasEmail())
	assert.False(t, (&User{}).HasEmail())
	assert.False(t, (&User{Email: " \t"}).HasEmail())
	assert.True(t, (&User{Email: "a@x.com"}).HasEmail())
}

func TestUser_NotifyAddress(t *testing.T) {
	var nilUser *User
	_, err := nilUser.NotifyAddress()
	assert.ErrorIs(t, err, ErrNoEmail)

	_, err = (&User{Email: "  "}).NotifyAddress()
	assert.ErrorIs(t, err, ErrNoEmail)

	addr, err := (&User{Email: " a@x.com\n"}).NotifyAddress()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", addr)
}
