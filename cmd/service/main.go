package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fjcanyue/smart-survey/internal/config"
	"github.com/fjcanyue/smart-survey/internal/http/server"
	"github.com/fjcanyue/smart-survey/internal/observability/errreport"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "Path to YAML config (opcional)")
	envFile := flag.String("env-file", ".env", "Archivo .env a cargar si existe")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warn: .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Environment,
		Level:       cfg.Log.Level,
		ServiceName: "smart-survey",
		Version:     version,
	})
	lg := logger.L()
	defer func() { _ = lg.Sync() }()

	flush, err := errreport.Init(errreport.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.App.Environment,
		Release:     version,
	})
	if err != nil {
		lg.Warn("sentry init failed", logger.Err(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(logger.ToContext(ctx, lg), cfg)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := app.Cleanup(); err != nil {
			lg.Warn("cleanup", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("env", cfg.App.Environment),
			logger.String("storage", cfg.Storage.Driver),
			logger.String("cache", cfg.Cache.Kind),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed", logger.Err(err))
		}
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("shutdown", logger.Err(err))
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
