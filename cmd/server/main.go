// Package main runs the EventHub HTTP API.
//
// @title EventHub API
// @version 1.0
// @description Event registration with capacity-safe admission.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/queue"
	delivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository"
	"eventhub/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("open store", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("close store", "err", err)
		}
	}()
	logger.Info("store ready", "driver", cfg.Store.Driver)

	notifier, closeNotifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Error("notifier", "err", err)
		os.Exit(1)
	}
	defer closeNotifier()

	tokens := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.Expiry)
	hasher := auth.NewBcryptHasher(0) // 0 selects bcrypt.DefaultCost

	eventService := services.NewEventService(store.Events, cfg.RequestTimeout)
	userService := services.NewUserService(store.Users, hasher, tokens)
	availabilityService := services.NewAvailabilityService(store.Events, store.Users, store.Registrations)
	registrationService := services.NewRegistrationService(store.Events, store.Users, store.Registrations, notifier, logger)
	reportingService := services.NewReportingService(store.Events, store.Registrations)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:         controllers.NewAuthController(logger, userService),
		User:         controllers.NewUserController(logger, userService),
		Event:        controllers.NewEventController(logger, eventService, availabilityService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		Reporting:    controllers.NewReportingController(logger, reportingService),
	}, tokens, store.Ping, logger)

	var handler http.Handler = mux
	handler = middleware.Timeout(cfg.RequestTimeout, handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Recover(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	logger.Info("server stopped")
}

// newNotifier returns the Redis queue when REDIS_ADDR is set and otherwise
// sends the registration email in-process.
func newNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.RegistrationNotifier, func(), error) {
	if cfg.Redis.Addr != "" {
		rdb, err := queue.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("registration notifications queued", "redis", cfg.Redis.Addr)
		return queue.NewQueue(rdb, logger), func() { _ = rdb.Close() }, nil
	}
	mailer, err := email.NewMailer(mailerConfig(cfg.Email), logger)
	if err != nil {
		return nil, nil, err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	return services.NewEmailNotifier(emailService), func() {}, nil
}

func mailerConfig(c config.EmailConfig) email.MailerConfig {
	return email.MailerConfig{
		Provider:    c.Provider,
		FromAddress: c.FromAddress,
		FromName:    c.FromName,
		SES: email.SESConfig{
			Region:             c.AWSRegion,
			AccessKeyID:        c.AWSAccessKeyID,
			SecretAccessKey:    c.AWSSecretAccessKey,
			InsecureSkipVerify: c.SESInsecureSkipVerify,
		},
	}
}
