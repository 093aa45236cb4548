package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/attestation-tracker/internal/config"
	"github.com/unclebandit/attestation-tracker/internal/db"
	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/queue"
	"github.com/unclebandit/attestation-tracker/internal/repository"
)

func main() {
	cfg, _ := config.Load()
	logger.Init(cfg.LogLevel)

	if cfg.AMQPURL == "" {
		logger.Log.Fatal("AMQP_URL is required for the worker")
	}
	if !cfg.ActionLogEnabled() {
		logger.Log.Fatal("DB_HOST and DB_NAME are required for the worker")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open action log database")
	}
	defer conn.Close()

	q, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer q.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := &repository.ActionLogRepository{DB: conn}
	if err := run(ctx, q, cfg.ActionsQueue, repo); err != nil {
		logger.Log.WithError(err).Fatal("Worker stopped")
	}
}

// run consumes action events from topic into repo until ctx ends.
func run(ctx context.Context, q queue.Queue, topic string, repo repository.ActionLogRepositoryInterface) error {
	if err := queue.StartActionLogSubscriber(q, topic, repo); err != nil {
		return err
	}
	logger.WithField("topic", topic).Info("Worker running, waiting for action events")
	<-ctx.Done()
	logger.Log.Info("Worker shutting down")
	return nil
}
