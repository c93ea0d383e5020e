package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventreminder/internal/delivery/http/controllers"
	"eventreminder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReminderService struct{ calls int }

func (s *stubReminderService) CheckEvents(ctx context.Context, now time.Time) (*domain.PassResult, error) {
	s.calls++
	return &domain.PassResult{PassID: "p"}, nil
}

type stubPinger struct{}

func (stubPinger) PingContext(ctx context.Context) error { return nil }

func TestRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := &stubReminderService{}
	mux := NewRouter(controllers.NewReminderController(logger, svc), controllers.NewHealthController(logger, stubPinger{}))
	handler := NewHandler(mux, logger, []string{"http://localhost:3000"})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantCalls  int
	}{
		{"manual trigger", http.MethodGet, "/test", http.StatusOK, 1},
		{"manual trigger wrong method", http.MethodPost, "/test", http.StatusMethodNotAllowed, 0},
		{"health", http.MethodGet, "/api/health", http.StatusOK, 0},
		{"unknown route", http.MethodGet, "/events", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.calls = 0
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "http://test"+tt.path, nil)
			req.Header.Set("Origin", "http://localhost:3000")

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalls, svc.calls)
			assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}
