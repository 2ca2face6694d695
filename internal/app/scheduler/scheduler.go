// Package scheduler собирает приложение планировщика жизненного цикла планов.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/warrenposo/cloudmining-backend/internal/config"
	"github.com/warrenposo/cloudmining-backend/internal/lib/rabbitmq"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	schedulerservice "github.com/warrenposo/cloudmining-backend/internal/services/scheduler"
	"github.com/warrenposo/cloudmining-backend/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnection, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	publisher := rabbitmq.NewPublisher(ch, "notifications")
	schedulerService := schedulerservice.New(db, publisher, logger)

	return &App{
		schedulerService: schedulerService,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает суточный цикл обслуживания планов до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.Run(ctx, 24*time.Hour)

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
