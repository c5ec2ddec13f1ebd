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

	"expensetracker/internal/config"
	"expensetracker/internal/database"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/notify"
	"expensetracker/internal/router"
	"expensetracker/internal/validator"
)

// @title           Expense Tracker API
// @version         1.0
// @description     Expense Tracker records income and expenses, tracks budgets per category and alerts users as their spending approaches a budget.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Notification queue: RabbitMQ when configured, in-process workers otherwise.
	// The in-process processor needs the report service, which needs the queue.
	var (
		queue     notify.Queue
		processor *notify.Processor
	)
	if appConfig.AMQPURL != "" {
		amqpQueue, err := notify.NewAMQPQueue(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue, logger.Named("amqp"))
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		queue = amqpQueue
		log.Infof("Publishing notifications to exchange %s", appConfig.AMQPExchange)
	} else {
		queue = notify.NewPool(func(ctx context.Context, job notify.Job) error {
			return processor.Handle(ctx, job)
		}, appConfig.NotifyWorkers, appConfig.NotifyQueueSize, appConfig.NotifyTimeout, logger.Named("notify"))
		log.Infof("Delivering notifications in-process with %d workers", appConfig.NotifyWorkers)
	}

	svc := router.NewServices(dbManager.DB(), queue, appConfig.BudgetWindow)
	if appConfig.AMQPURL == "" {
		processor = notify.NewProcessor(notify.NewSenderFromConfig(appConfig, logger.Named("sender")), svc.Reports, logger.Named("notify"))
	}

	// Custom binding tags must exist before the first request is bound.
	validator.Register()

	tokens := middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur)
	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router.New(svc, tokens),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Expense Tracker server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = queue.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("server shutdown error: %v", err)
	}

	// Drain pending notifications after the last request has finished.
	if err := queue.Close(); err != nil {
		log.Warnf("notification queue close error: %v", err)
	}
	log.Info("Server stopped")
	return nil
}
