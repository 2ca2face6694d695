// Package api собирает основное HTTP-приложение: хранилище, кеш,
// индекс цен, брокер уведомлений, сервисы и маршруты.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/warrenposo/cloudmining-backend/internal/cache"
	"github.com/warrenposo/cloudmining-backend/internal/config"
	"github.com/warrenposo/cloudmining-backend/internal/lib/jwt"
	"github.com/warrenposo/cloudmining-backend/internal/lib/rabbitmq"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/migrations"
	"github.com/warrenposo/cloudmining-backend/internal/pricefeed"
	accountservice "github.com/warrenposo/cloudmining-backend/internal/services/account"
	adminservice "github.com/warrenposo/cloudmining-backend/internal/services/admin"
	authservice "github.com/warrenposo/cloudmining-backend/internal/services/auth"
	purchaseservice "github.com/warrenposo/cloudmining-backend/internal/services/purchase"
	ticketservice "github.com/warrenposo/cloudmining-backend/internal/services/ticket"
	"github.com/warrenposo/cloudmining-backend/internal/storage/repository"
)

// App представляет основное приложение бэкенда.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	prices *pricefeed.Client
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New инициализирует зависимости и собирает приложение.
// Брокер уведомлений необязателен: без него подтверждение депозита
// проходит, письмо просто не отправляется.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	prices := pricefeed.New(cfg.PriceFeed, logger)

	var conn *amqp.Connection
	var ch *amqp.Channel
	var publisher *rabbitmq.Publisher
	if cfg.RabbitConnection != "" {
		conn, err = rabbitmq.Connect(cfg.RabbitConnection, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, deposit notifications disabled", sl.Err(err))
		} else {
			ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
			if err != nil {
				return nil, fmt.Errorf("failed to setup rabbitmq channel: %w", err)
			}
			publisher = rabbitmq.NewPublisher(ch, "notifications")
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	rolePolicy := authservice.NewAllowlistPolicy(cfg.AdminEmails)

	authSrv := authservice.NewAuthService(db, jwtMaker, rolePolicy, cfg.ProfileFetchTimeout, logger)
	purchaseSrv := purchaseservice.New(db, cacheRedis, prices, logger)
	accountSrv := accountservice.New(db, cacheRedis, prices, logger)
	ticketSrv := ticketservice.New(db, logger)
	var adminPublisher adminservice.Publisher
	if publisher != nil {
		adminPublisher = publisher
	}
	adminSrv := adminservice.New(db, cacheRedis, adminPublisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authSrv, purchaseSrv, accountSrv, ticketSrv, adminSrv, prices)

	server := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: server,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		prices: prices,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает фоновый опрос цен и HTTP-сервер, останавливая всё
// по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.prices.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting http server", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown http server", sl.Err(err))
		}
		if a.ch != nil {
			if err := a.ch.Close(); err != nil {
				a.logger.Error("failed to close channel", sl.Err(err))
			}
		}
		if a.conn != nil {
			if err := a.conn.Close(); err != nil {
				a.logger.Error("failed to close connection", sl.Err(err))
			}
		}
		if err := a.db.DB.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
		return nil
	}
}
