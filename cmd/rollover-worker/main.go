package main

import (
	"context"
	"os"
	"time"

	"financeiro/internal/amqp"
	"financeiro/internal/cli"
	"financeiro/internal/report"
	"financeiro/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	logger.Info("Starting rollover-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// AMQP is optional: the worker still closes periods without it, the
	// report events just don't go out.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized")
		}
	} else {
		logger.Info("AMQP disabled - report events will not be published")
	}

	sink, err := report.NewSink(context.Background(), cfg.ReportBackend, cfg.ReportsDir, logger)
	if err != nil {
		logger.Error("Failed to initialize report sink", "error", err, "backend", cfg.ReportBackend)
		os.Exit(1)
	}

	engine := services.NewRolloverEngine(store, sink, amqpClient, cfg.RolloverConcurrency)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Rollover worker configured",
		"interval", cfg.RolloverInterval,
		"concurrency", cfg.RolloverConcurrency,
		"sqlite_db", cfg.SQLiteDBPath,
		"report_backend", cfg.ReportBackend)

	ticker := time.NewTicker(cfg.RolloverInterval)
	defer ticker.Stop()

	// Run an initial sweep on startup so a worker restarted mid-month
	// still closes the previous period.
	logger.Info("Running initial rollover sweep...")
	if count, err := engine.RunScheduledRollover(ctx, time.Now()); err != nil {
		logger.Error("Initial rollover sweep failed", "error", err)
	} else {
		logger.Info("Initial rollover sweep complete", "periods_closed", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Running scheduled rollover sweep...")
				count, err := engine.RunScheduledRollover(ctx, now)
				if err != nil {
					logger.Error("Rollover sweep failed", "error", err)
				} else {
					logger.Info("Rollover sweep complete",
						"periods_closed", count,
						"next_check", now.Add(cfg.RolloverInterval).Format("15:04:05"))
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
