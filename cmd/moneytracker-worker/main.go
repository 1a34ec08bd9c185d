package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneytracker/internal/amqp"
	"moneytracker/internal/backend"
	"moneytracker/internal/cli"
	"moneytracker/internal/config"
	"moneytracker/internal/log"
	"moneytracker/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting moneytracker-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	if err := run(logger, cfg); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// run owns every resource it opens, so deferred closes run on all paths.
func run(logger *log.Logger, cfg *config.Config) error {
	// The worker reads the same store the server writes
	source, err := cli.OpenStore(context.Background(), logger, cfg)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer closeWith(logger, "ledger store", source.Close)

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	mirror, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateMirror(context.Background(), bc)
	if err != nil {
		return fmt.Errorf("initialize mirror: %w", err)
	}
	defer closeWith(logger, "mirror", mirror.Close)

	mirrorWorker := worker.NewMirrorWorker(source.Store, mirror.Mirror, logger)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer closeWith(logger, "AMQP client", amqpClient.Close)
	} else {
		logger.Info("AMQP disabled, relying on periodic sync only", "interval", cfg.MirrorInterval)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mirrorWorker.RunPeriodicSync(gctx, cfg.MirrorInterval)
	})
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeEntryEvents(gctx, mirrorWorker.HandleEntryEvent)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cli.WaitForShutdown(ctx, done)
	return nil
}

func closeWith(logger *log.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn("Close failed", "resource", name, "error", err)
	}
}
