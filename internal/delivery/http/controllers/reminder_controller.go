package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventreminder/internal/delivery/http/helpers"
	"eventreminder/internal/domain"
)

// CheckedEventsStatus is the fixed acknowledgment returned after a manual reminder pass.
const CheckedEventsStatus = "checked events"

// DefaultPassTimeout bounds a manual pass when PassTimeout is unset.
const DefaultPassTimeout = 4 * time.Minute

// TriggerResponse is the data returned by GET /test.
type TriggerResponse struct {
	Status string `json:"status"`
}

// TriggerSuccessResponse is the success response envelope for GET /test (200).
type TriggerSuccessResponse struct {
	Data  TriggerResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ReminderController exposes the reminder pass for manual runs.
type ReminderController struct {
	Logger  *slog.Logger
	Service domain.ReminderService
	Now     func() time.Time
	// PassTimeout bounds the pass. A client disconnect does not cancel it.
	PassTimeout time.Duration
}

// NewReminderController creates a ReminderController with the given logger and service.
func NewReminderController(logger *slog.Logger, svc domain.ReminderService) *ReminderController {
	return &ReminderController{
		Logger:      logger,
		Service:     svc,
		Now:         time.Now,
		PassTimeout: DefaultPassTimeout,
	}
}

// TriggerCheck godoc
// @Summary Run a reminder pass now
// @Description Synchronously scans for events due a reminder and emails their owners. The response does not depend on how many events were processed.
// @Tags reminders
// @Produce json
// @Success 200 {object} controllers.TriggerSuccessResponse "data.status is \"checked events\""
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /test [get]
func (c *ReminderController) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	timeout := c.PassTimeout
	if timeout <= 0 {
		timeout = DefaultPassTimeout
	}
	// A sent reminder must still be recorded if the client goes away mid-pass.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
	defer cancel()

	res, err := c.Service.CheckEvents(ctx, c.Now())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	c.Logger.InfoContext(r.Context(), "manual reminder pass", "pass_id", res.PassID, "found", res.Found, "sent", res.Sent)
	helpers.WriteJSONSuccess(w, http.StatusOK, TriggerResponse{Status: CheckedEventsStatus})
}
