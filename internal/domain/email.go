package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
// A nil error means the message was accepted for delivery.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventReminderEmailData holds data for the event reminder email.
type EventReminderEmailData struct {
	Email     string
	Title     string
	Start     time.Time
	StartText string // human-readable local start time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventReminder(ctx context.Context, data *EventReminderEmailData) error
}
