package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orcamento_backend/internal/adapters/storage"
	apphttp "orcamento_backend/internal/http"
	"orcamento_backend/internal/http/router"
	"orcamento_backend/internal/quotes"
	"orcamento_backend/internal/webhook"
	"orcamento_backend/platform/config"
	"orcamento_backend/platform/logger"
	"orcamento_backend/platform/metrics"
	"orcamento_backend/platform/validator"
)

const (
	serviceName     = "orcamento"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	backend, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		panic("failed to open store: " + err.Error())
	}
	defer backend.close()

	// Shared validator instance for dependency injection
	val := validator.New()
	appMetrics := metrics.New(serviceName)

	notifier := webhook.NewNotifier(cfg, log)
	notifier.SetMetrics(appMetrics)
	if !notifier.Enabled() {
		log.Warn("WEBHOOK_URL not configured; quote notifications disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	quotesModule := quotes.NewModule(backend.tables, val, cfg, notifier, log)
	quotesModule.SetMetrics(appMetrics)

	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure quote-pdfs bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketQuotePDFs())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketQuotePDFs())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		quotesModule.SetStorageForPDF(storageSvc, cfg.GetMinioBucketQuotePDFs())
		log.Info("storage service initialized", "quotePDFsBucket", cfg.GetMinioBucketQuotePDFs())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; PDF archiving disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  backend.health,
		Metrics: appMetrics,
		Modules: []apphttp.Module{
			quotesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
