package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

const statsInterval = 5 * time.Minute

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.ExitOnError(cli.SetupLogger("info"), "Configuration validation failed", err)
	}

	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	flush := cli.InitReporting(cfg, logger)
	defer flush()

	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set; the worker needs a broker")
	}

	logger.Info("Starting fintrack-worker", "queue", cfg.AMQPQueue, "db_path", cfg.SQLiteDBPath)

	repo, err := cli.OpenSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	w := worker.NewActivityWorker(repo, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeActivity(gctx, w.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error { return w.ReportStats(gctx, statsInterval) })

	if err := g.Wait(); err != nil {
		return err
	}

	st := w.Stats()
	logger.Info("Worker stopped gracefully",
		"processed", st.Processed,
		"dropped", st.Dropped,
		"failed", st.Failed)
	return nil
}
