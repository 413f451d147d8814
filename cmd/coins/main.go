package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/York260/Coins-manager/internal/config"
	"github.com/York260/Coins-manager/internal/core"
	"github.com/York260/Coins-manager/internal/events"
	apphttp "github.com/York260/Coins-manager/internal/http"
	applog "github.com/York260/Coins-manager/internal/log"
	"github.com/York260/Coins-manager/internal/services"
	"github.com/York260/Coins-manager/internal/store"
	"github.com/York260/Coins-manager/internal/summary"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := store.Open(store.Config{
		Type:          store.BackendType(cfg.StateBackend),
		StateFilePath: cfg.StateFilePath,
		SQLiteDBPath:  cfg.SQLiteDBPath,
	}, logger.Logger)
	if err != nil {
		logger.Error("Failed to open state store",
			applog.FieldError, err,
			applog.FieldBackend, cfg.StateBackend)
		os.Exit(1)
	}
	defer cleanup()

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, catch-up notifications disabled",
				applog.FieldError, err)
			eventsClient = nil
		} else {
			defer eventsClient.Close()
			logger.Info("AMQP client initialized")
		}
	}

	ledger, err := services.NewLedgerService(ctx, st, eventsClient,
		logger.WithComponent(applog.ComponentLedger))
	if err != nil {
		logger.Error("Failed to initialize ledger service", applog.FieldError, err)
		os.Exit(1)
	}

	// Replay any rules that fell behind while the app was not running.
	res := ledger.CatchUp(ctx, core.Today())
	logger.Info("Startup catch-up finished",
		applog.FieldSynthesized, res.Synthesized,
		applog.FieldAdvanced, res.RulesAdvanced,
		applog.FieldOperation, applog.OpStartup)

	analyzer := summary.NewAnalyzer(summary.Config{
		APIKey:           cfg.GeminiAPIKey,
		Model:            cfg.GeminiModel,
		TransactionLimit: cfg.SummaryTransactionLimit,
	}, logger.WithComponent(applog.ComponentSummary))

	srv := apphttp.NewServer(":"+cfg.Port, ledger, analyzer,
		logger.WithComponent(applog.ComponentHTTP))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server",
			"port", cfg.Port,
			applog.FieldBackend, cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
