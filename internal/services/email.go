package services

import (
	"context"
	"fmt"

	"eventreminder/internal/domain"
)

const eventReminderTemplate = "event_reminder"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendEventReminder sends the reminder email using the "event_reminder" template and the given data.
func (s *emailService) SendEventReminder(ctx context.Context, data *domain.EventReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("event reminder data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(eventReminderTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", eventReminderTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send event reminder email: %w", err)
	}
	return nil
}
