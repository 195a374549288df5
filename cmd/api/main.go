package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelter-ops/internal/adapters/auth/hstoken"
	"shelter-ops/internal/adapters/auth/remote"
	"shelter-ops/internal/adapters/storage/postgres"
	"shelter-ops/internal/notify"
	"shelter-ops/internal/platform/config"
	"shelter-ops/internal/platform/logger"
	"shelter-ops/internal/ports/auth"
	"shelter-ops/internal/router"
	"shelter-ops/internal/scheduler"

	"github.com/joho/godotenv"
)

// @title Shelter Ops API
// @version 1.0
// @description Backend multi-tenant para refugios de animales.
// @BasePath /
func main() {
	// .env es opcional; en prod todo viene del entorno
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid configuration", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.NewFromEnv().With(logger.Fields{"app": cfg.AppName})

	verifier := buildVerifier(cfg, log)

	db, err := openDB(cfg)
	if err != nil {
		log.Error("database unavailable", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	if db == nil {
		log.Warn("DB_DSN not set, using in-memory repositories", nil)
	}

	handler, services := router.NewRouter(router.Options{
		AuthVerifier:        verifier,
		DB:                  db,
		Logger:              log,
		StripeSecretKey:     cfg.StripeSecretKey,
		StripeWebhookSecret: cfg.StripeWebhookSecret,
	})

	notifier := notify.NewNotifier(cfg.ReminderWebhookURL)
	sched := scheduler.New(services.Medical, notifier, log)
	if err := sched.Start(cfg.SweepInterval); err != nil {
		log.Error("scheduler failed to start", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", logger.Fields{"error": err.Error()})
		os.Exit(1)
	case sig := <-stop:
		log.Info("shutting down", logger.Fields{"signal": sig.String()})
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", logger.Fields{"error": err.Error()})
	}
}

// buildVerifier elige el verificador de tokens: remoto si hay servicio
// de identidad configurado, HS256 local si hay JWT_SECRET, nil (modo
// debug) si no hay nada.
func buildVerifier(cfg config.Config, log logger.Logger) auth.AuthVerifier {
	if cfg.AuthBaseURL != "" {
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
			Timeout: 5 * time.Second,
		})
		if err != nil {
			log.Error("invalid AUTH_BASE_URL", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
		return client
	}
	if cfg.JWTSecret != "" {
		return hstoken.NewVerifier(cfg.JWTSecret)
	}
	log.Warn("no auth verifier configured, accepting X-Debug-* headers", nil)
	return nil
}

func openDB(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDSN == "" {
		return nil, nil
	}
	db, err := postgres.Open(cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
