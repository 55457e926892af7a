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

	"slotbooking/config"
	_ "slotbooking/docs"
	authadapter "slotbooking/internal/adapters/auth"
	"slotbooking/internal/adapters/email"
	deliveryhttp "slotbooking/internal/delivery/http"
	"slotbooking/internal/delivery/http/controllers"
	"slotbooking/internal/delivery/http/middleware"
	"slotbooking/internal/repository/postgres"
	"slotbooking/internal/services"
	"slotbooking/migrations"
)

const shutdownTimeout = 10 * time.Second

// @title Slot Booking API
// @version 1.0
// @description Single-day event time-slot registration service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open db", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(startupCtx); err != nil {
		logger.Error("db ping", "err", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, db); err != nil {
		logger.Error("apply migrations", "err", err)
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
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}

	hasher := authadapter.NewBcryptHasher(10)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)

	authSvc, err := services.NewAuthService(cfg.AdminPassword, hasher, issuer, cfg.TokenExpiry)
	if err != nil {
		logger.Error("init auth service", "err", err)
		os.Exit(1)
	}
	eventSvc := services.NewEventService(eventRepo, regRepo, mailer, cfg.BaseURL, logger)
	regSvc := services.NewRegistrationService(eventRepo, regRepo)

	authController := controllers.NewAuthController(logger, authSvc)
	adminController := controllers.NewAdminController(logger, eventSvc, regSvc)
	publicController := controllers.NewPublicController(logger, eventSvc, regSvc)

	mux := deliveryhttp.NewRouter(logger, verifier, authController, adminController, publicController)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
