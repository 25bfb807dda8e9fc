package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventseating/config"
	_ "eventseating/docs"
	"eventseating/internal/adapters/auth"
	"eventseating/internal/adapters/email"
	"eventseating/internal/adapters/qrcode"
	httpdelivery "eventseating/internal/delivery/http"
	"eventseating/internal/delivery/http/controllers"
	"eventseating/internal/delivery/http/middleware"
	"eventseating/internal/repository/postgres"
	"eventseating/internal/services"
)

// @title Event Seating API
// @version 1.0
// @description RSVP, credential, seating and door check-in service for invitation-only events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	templates, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	inviteeRepo := postgres.NewInviteeRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	seatingRepo := postgres.NewSeatingRepository(db)

	// Services
	dispatcher := services.NewNotificationDispatcher(logger, cfg.NotifyMaxInFlight, cfg.NotifyTimeout)
	emailService := services.NewEmailService(mailer, templates, logger)
	issuer := services.NewCredentialIssuer(qrcode.NewRenderer(cfg.QRCodeSize), cfg.CredentialRenderTimeout, cfg.EventLocation)
	eventService := services.NewEventService(eventRepo, cfg.EventLocation, cfg.ContextTimeout)
	inviteeService := services.NewInviteeService(eventRepo, inviteeRepo, emailService, dispatcher)
	guestService := services.NewGuestService(eventRepo, inviteeRepo, guestRepo, issuer, emailService, dispatcher)
	seatingService := services.NewSeatingService(eventRepo, seatingRepo, logger)
	checkInService := services.NewCheckInService(guestRepo, cfg.EventLocation, logger)

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Events:   controllers.NewEventController(logger, eventService),
		Invitees: controllers.NewInviteeController(logger, inviteeService),
		Guests:   controllers.NewGuestController(logger, guestService),
		Seating:  controllers.NewSeatingController(logger, seatingService),
		CheckIn:  controllers.NewCheckInController(logger, checkInService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	var handler http.Handler = router
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// Let queued emails finish before the process exits.
	dispatcher.Wait()
	return nil
}
