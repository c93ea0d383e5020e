package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventreminder/internal/domain"
)

const eventColumns = `id, title, start_at, end_at, reminder_minutes, reminder_time_calculated, reminder_sent, user_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var endNull, reminderAtNull sql.NullTime
	err := s.Scan(
		&e.ID, &e.Title, &e.Start, &endNull, &e.ReminderMinutes, &reminderAtNull,
		&e.ReminderSent, &e.UserID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endNull.Valid {
		e.End = &endNull.Time
	}
	if reminderAtNull.Valid {
		e.ReminderTimeCalculated = &reminderAtNull.Time
	}
	return e, nil
}

func (r *eventRepository) ListDueForReminder(ctx context.Context, now, from, to time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE reminder_time_calculated BETWEEN $1 AND $2
		  AND reminder_sent = false
		  AND start_at > $3
	`
	rows, err := r.DB.QueryContext(ctx, query, from, to, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE events SET reminder_sent = true, updated_at = $2 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrEventNotFound
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
