package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventreminder/internal/domain"
)

// StartTimeLayout renders an event start as e.g. "Saturday, March 01 at 03:04 PM UTC".
const StartTimeLayout = "Monday, January 02 at 03:04 PM MST"

// ReminderConfig tunes a reminder pass.
type ReminderConfig struct {
	Window      domain.ReminderWindow
	SendTimeout time.Duration  // zero means no bound beyond the caller's context
	Location    *time.Location // zone used in the email body; nil means time.Local
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeSkipped
	outcomeFailed
)

type reminderService struct {
	events   domain.EventRepository
	users    domain.UserRepository
	email    domain.EmailService
	locker   domain.ReminderLocker
	window   domain.ReminderWindow
	timeout  time.Duration
	location *time.Location
	logger   *slog.Logger
}

// NewReminderService returns the reminder scanner. locker may be nil, in which case overlapping
// passes are not coordinated and may both send the same reminder.
func NewReminderService(events domain.EventRepository, users domain.UserRepository, email domain.EmailService, locker domain.ReminderLocker, cfg ReminderConfig, logger *slog.Logger) domain.ReminderService {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &reminderService{
		events:   events,
		users:    users,
		email:    email,
		locker:   locker,
		window:   cfg.Window,
		timeout:  cfg.SendTimeout,
		location: loc,
		logger:   logger.With("component", "reminder"),
	}
}

// CheckEvents sends a reminder for every event due at now and marks each one sent after a
// successful send. Events are handled one at a time; a failing event never stops the pass.
func (s *reminderService) CheckEvents(ctx context.Context, now time.Time) (*domain.PassResult, error) {
	passID := uuid.NewString()
	log := s.logger.With("pass_id", passID)
	from, to := s.window.Bounds(now)
	log.Info("checking events", "from", from, "to", to)

	events, err := s.events.ListDueForReminder(ctx, now, from, to)
	if err != nil {
		log.Error("reminder check failed", "error", err)
		return nil, fmt.Errorf("list events due for reminder: %w", err)
	}
	log.Info("found events needing reminders", "count", len(events))

	res := &domain.PassResult{PassID: passID, Found: len(events)}
	for _, e := range events {
		switch s.processEvent(ctx, log.With("event_id", e.ID), e, now) {
		case outcomeSent:
			res.Sent++
		case outcomeSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
	}
	log.Info("reminder check finished", "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

func (s *reminderService) processEvent(ctx context.Context, log *slog.Logger, e *domain.Event, now time.Time) (result outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic processing event", "panic", r)
			result = outcomeFailed
		}
	}()

	log.Debug("processing event", "title", e.Title, "start", e.Start, "reminder_at", e.ReminderTimeCalculated)

	user, err := s.users.GetByID(ctx, e.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn("user not found for event", "user_id", e.UserID)
			return outcomeSkipped
		}
		log.Error("failed to load user", "user_id", e.UserID, "error", err)
		return outcomeFailed
	}
	to, err := user.NotifyAddress()
	if errors.Is(err, domain.ErrNoEmail) {
		log.Warn("user has no email for event", "user_id", e.UserID)
		return outcomeSkipped
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, e.ID)
		if err != nil {
			if errors.Is(err, domain.ErrLockNotAcquired) {
				log.Info("event claimed by another pass")
				return outcomeSkipped
			}
			log.Error("failed to lock event", "error", err)
			return outcomeFailed
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release event lock", "error", err)
			}
		}()

		// The snapshot from the list query may be stale by the time the claim is held.
		fresh, err := s.events.GetByID(ctx, e.ID)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				log.Info("event removed before reminder")
				return outcomeSkipped
			}
			log.Error("failed to reload event", "error", err)
			return outcomeFailed
		}
		if !s.window.IsEligible(fresh, now) {
			log.Info("event no longer due", "reminder_sent", fresh.ReminderSent)
			return outcomeSkipped
		}
		e = fresh
	}

	if err := s.send(ctx, to, e); err != nil {
		log.Error("failed to send reminder", "to", to, "error", err)
		return outcomeFailed
	}
	if err := s.events.MarkReminderSent(ctx, e.ID, now); err != nil {
		log.Error("reminder sent but not recorded", "to", to, "error", err)
		return outcomeFailed
	}
	log.Info("reminder sent", "to", to)
	return outcomeSent
}

func (s *reminderService) send(ctx context.Context, to string, e *domain.Event) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.email.SendEventReminder(ctx, &domain.EventReminderEmailData{
		Email:     to,
		Title:     e.Title,
		Start:     e.Start,
		StartText: e.Start.In(s.location).Format(StartTimeLayout),
	})
}
