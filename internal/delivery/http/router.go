package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventreminder/internal/delivery/http/controllers"
	"eventreminder/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(reminderController *controllers.ReminderController, healthController *controllers.HealthController) *http.ServeMux {
	mux := http.NewServeMux()

	// Reminders
	mux.HandleFunc("GET /test", reminderController.TriggerCheck)

	// Health
	mux.HandleFunc("GET /api/health", healthController.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps h with CORS for allowedOrigins and request logging.
func NewHandler(h http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.CORS(allowedOrigins, middleware.LoggingMiddleware(logger, h))
}
