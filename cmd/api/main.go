package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"speakerbooking/config"
	_ "speakerbooking/docs"
	"speakerbooking/internal/adapters/email"
	deliveryhttp "speakerbooking/internal/delivery/http"
	"speakerbooking/internal/delivery/http/controllers"
	"speakerbooking/internal/delivery/http/middleware"
	"speakerbooking/internal/repository/postgres"
	"speakerbooking/internal/services"
)

// @title Speaker Booking API
// @version 1.0
// @description Schedules speakers against conference sessions and rejects overlapping bookings.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	speakerRepo := postgres.NewSpeakerRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)

	speakerSvc := services.NewSpeakerService(speakerRepo, sessionRepo, cfg.ContextTimeout)
	availabilitySvc := services.NewAvailabilityService(assignmentRepo, cfg.ContextTimeout)
	bookingSvc := services.NewBookingService(speakerRepo, sessionRepo, assignmentRepo, mailer, logger, cfg.ContextTimeout)

	speakerController := controllers.NewSpeakerController(logger, speakerSvc, availabilitySvc)
	bookingController := controllers.NewBookingController(logger, bookingSvc)

	mux := deliveryhttp.NewRouter(speakerController, bookingController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins,
		middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("server stopped")
}
