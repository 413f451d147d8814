package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/York260/Coins-manager/internal/config"
	"github.com/York260/Coins-manager/internal/core"
	"github.com/York260/Coins-manager/internal/events"
	applog "github.com/York260/Coins-manager/internal/log"
	"github.com/York260/Coins-manager/internal/services"
	"github.com/York260/Coins-manager/internal/store"
)

// catchup-worker runs the automation engine on a fixed interval for
// deployments where the server binary is not kept running.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting catchup-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

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
			logger.Warn("Failed to initialize AMQP client, continuing without notifications",
				applog.FieldError, err)
			eventsClient = nil
		} else {
			defer eventsClient.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, err := services.NewLedgerService(ctx, st, eventsClient,
		logger.WithComponent(applog.ComponentLedger))
	if err != nil {
		logger.Error("Failed to initialize ledger service", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Catch-up processor configured",
		"interval", cfg.CatchupInterval,
		applog.FieldBackend, cfg.StateBackend)

	run := func(asOf core.Date) {
		res := ledger.CatchUp(ctx, asOf)
		if res.Changed {
			logger.Info("Catch-up pass complete",
				applog.FieldAsOf, asOf.String(),
				applog.FieldSynthesized, res.Synthesized,
				applog.FieldAdvanced, res.RulesAdvanced)
		}
	}

	// Initial pass on startup, then on every tick. Ticks within the same
	// calendar day are no-ops.
	run(core.Today())

	ticker := time.NewTicker(cfg.CatchupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
			return
		case now := <-ticker.C:
			run(core.DateOf(now))
		}
	}
}
