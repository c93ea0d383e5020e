package services

import (
	"context"
	"testing"
	"time"

	"eventreminder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer implements domain.Mailer for tests.
type fakeMailer struct {
	sent []sentMail
	err  error
	// hasDeadline records whether the last Send saw a context deadline.
	hasDeadline bool
}

type sentMail struct {
	to, subject, html, text string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	_, f.hasDeadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html, text: text})
	return nil
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct {
	lastName string
	err      error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.lastName = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	d := data.(*domain.EventReminderEmailData)
	return "Reminder: " + d.Title, "<p>" + d.StartText + "</p>", d.StartText, nil
}

func TestEmailService_SendEventReminder(t *testing.T) {
	data := &domain.EventReminderEmailData{
		Email:     "a@x.com",
		Title:     "Standup",
		Start:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		StartText: "Saturday, March 01 at 09:00 AM UTC",
	}

	tests := []struct {
		name      string
		data      *domain.EventReminderEmailData
		renderErr error
		mailErr   error
		wantErr   error
		wantSent  int
	}{
		{name: "success", data: data, wantSent: 1},
		{name: "nil data", data: nil},
		{name: "render error", data: data, renderErr: assert.AnError, wantErr: assert.AnError},
		{name: "mailer error", data: data, mailErr: assert.AnError, wantErr: assert.AnError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{err: tt.mailErr}
			renderer := &fakeRenderer{err: tt.renderErr}
			svc := NewEmailService(mailer, renderer)

			err := svc.SendEventReminder(context.Background(), tt.data)
			if tt.data == nil {
				require.Error(t, err)
				return
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mailer.sent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "event_reminder", renderer.lastName)
			require.Len(t, mailer.sent, tt.wantSent)
			assert.Equal(t, "a@x.com", mailer.sent[0].to)
			assert.Equal(t, "Reminder: Standup", mailer.sent[0].subject)
		})
	}
}
