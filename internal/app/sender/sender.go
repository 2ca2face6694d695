// Package sender собирает приложение отправителя почтовых уведомлений.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/warrenposo/cloudmining-backend/internal/config"
	"github.com/warrenposo/cloudmining-backend/internal/lib/rabbitmq"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/lib/smtp"
	senderservice "github.com/warrenposo/cloudmining-backend/internal/services/sender"
)

// App представляет приложение отправителя уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New создает новый экземпляр приложения отправителя.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnection, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(newTransport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run подписывается на очереди уведомлений и работает до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notification.plan_expiring", a.senderService.SendPlanExpiring)
	if err != nil {
		a.logger.Error("failed to start plan_expiring consumer", sl.Err(err))
		return err
	}

	err = rabbitmq.ConsumerMessage(ctx, a.ch, "notification.deposit_confirmed", a.senderService.SendDepositConfirmed)
	if err != nil {
		a.logger.Error("failed to start deposit_confirmed consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
