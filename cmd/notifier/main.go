// Command notifier consumes notification jobs from RabbitMQ and delivers them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expensetracker/internal/config"
	"expensetracker/internal/database"
	"expensetracker/internal/logger"
	"expensetracker/internal/notify"
	"expensetracker/internal/router"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Notifier error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required")
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	queue, err := notify.NewAMQPQueue(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue, logger.Named("amqp"))
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			log.Warnf("broker close error: %v", err)
		}
	}()

	// The notifier only reads; it never enqueues follow-up jobs.
	svc := router.NewServices(dbManager.DB(), nil, appConfig.BudgetWindow)
	processor := notify.NewProcessor(notify.NewSenderFromConfig(appConfig, logger.Named("sender")), svc.Reports, logger.Named("notify"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := func(ctx context.Context, job notify.Job) error {
		jobCtx, cancel := context.WithTimeout(ctx, appConfig.NotifyTimeout)
		defer cancel()
		return processor.Handle(jobCtx, job)
	}

	log.Infof("Consuming notifications from queue %s", appConfig.AMQPQueue)
	if err := queue.Consume(ctx, handler); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	log.Info("Notifier stopped")
	return nil
}
