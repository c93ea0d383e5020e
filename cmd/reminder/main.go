// Command reminder polls for events whose reminder is due and emails their owners.
//
// @title Event Reminder API
// @version 1.0
// @description Background service that emails event owners before their events start.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventreminder/config"
	_ "eventreminder/docs"
	"eventreminder/internal/adapters/email"
	"eventreminder/internal/adapters/lock"
	httpdelivery "eventreminder/internal/delivery/http"
	"eventreminder/internal/delivery/http/controllers"
	"eventreminder/internal/domain"
	"eventreminder/internal/repository/postgres"
	"eventreminder/internal/scheduler"
	"eventreminder/internal/services"
)

const (
	dbPingTimeout   = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("reminder service failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.DBUrl, dbPingTimeout)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := postgres.RunMigrations(cfg.DBUrl, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	mailer, err := email.NewMailer(mailerConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}

	var locker domain.ReminderLocker
	if cfg.RedisAddr != "" {
		redisClient, err := lock.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, cfg.ReminderLockTTL)
		logger.Info("reminder lock enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.ReminderLockTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, overlapping reminder passes may send duplicate emails")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	reminderService := services.NewReminderService(
		postgres.NewEventRepository(db),
		postgres.NewUserRepository(db),
		services.NewEmailService(mailer, renderer),
		locker,
		services.ReminderConfig{
			Window:      domain.ReminderWindow{LookBack: cfg.ReminderLookBack, LookAhead: cfg.ReminderLookAhead},
			SendTimeout: cfg.ReminderSendTimeout,
			Location:    loc,
		},
		logger,
	)

	sched := scheduler.New(reminderService, logger, scheduler.Config{
		Interval:     cfg.ReminderInterval,
		InitialDelay: cfg.ReminderInitialDelay,
		PassTimeout:  cfg.ReminderPassTimeout,
	})
	sched.Start(ctx)
	defer sched.Stop()

	reminderController := controllers.NewReminderController(logger, reminderService)
	reminderController.PassTimeout = cfg.ReminderPassTimeout
	mux := httpdelivery.NewRouter(
		reminderController,
		controllers.NewHealthController(logger, db),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.NewHandler(mux, logger, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting event reminder service", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	sched.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("http server shutdown error", "error", err)
	}
	logger.Info("reminder service stopped")
	return nil
}

func mailerConfig(cfg *config.Config) email.MailerConfig {
	return email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			Timeout:  cfg.ReminderSendTimeout,
		},
	}
}
