package notifyservice

import (
	"context"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/postgres"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/software/notify/service"
)

// Run wires the notification dispatcher and blocks until ctx is cancelled.
// The service has no HTTP surface; it is a queue consumer.
func Run(ctx context.Context, prefetch int) error {
	logger := logger.New("notify-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	uow := postgres.NewUnitOfWork(pool)
	notificationRepo := postgres.NewNotificationRepo()

	dispatcher := service.NewDispatcher(logger, uow, notificationRepo, rmq)

	logger.Info(ctx, "service_started", "Notify Service started", map[string]any{"prefetch": prefetch})

	// the consumer returns when the channel drops; retry until ctx ends
	for {
		err := dispatcher.Run(ctx, prefetch)
		if ctx.Err() != nil {
			logger.Info(ctx, "shutdown_started", "Notify Service shutting down", nil)
			return nil
		}
		if err != nil {
			logger.Error(ctx, "consumer_restart", "Consumer stopped, restarting", err, nil)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "shutdown_started", "Notify Service shutting down", nil)
			return nil
		case <-time.After(3 * time.Second):
		}
	}
}
