// Package admin обслуживает консоль администратора: просмотр профилей,
// депозитов, выводов, обращений и показателей, а также ручное подтверждение
// депозитов с зачислением на баланс.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Repository определяет методы хранилища для консоли администратора.
type Repository interface {
	ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error)
	ListAllDeposits(ctx context.Context, limit, offset int) ([]*models.Deposit, error)
	ListAllWithdrawals(ctx context.Context, limit, offset int) ([]*models.Withdrawal, error)
	ListAllTickets(ctx context.Context, limit, offset int) ([]*models.TicketInfo, error)
	ListAllStats(ctx context.Context, limit, offset int) ([]*models.MiningStatInfo, error)
	ConfirmDeposit(ctx context.Context, txID string) (string, float64, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	UpsertStat(ctx context.Context, stat models.MiningStat) error
}

// Cache описывает инвалидацию кеша баланса после зачисления.
type Cache interface {
	Invalidate(key string) error
}

// Publisher публикует уведомления о событиях для отправителя писем.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует операции консоли администратора.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
}

// New создает новый Service консоли администратора. Publisher может быть
// nil: уведомления тогда не отправляются.
func New(repo Repository, cache Cache, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Profiles возвращает страницу профилей.
func (s *Service) Profiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	return s.repo.ListProfiles(ctx, limit, offset)
}

// Deposits возвращает страницу депозитов всех пользователей.
func (s *Service) Deposits(ctx context.Context, limit, offset int) ([]*models.Deposit, error) {
	return s.repo.ListAllDeposits(ctx, limit, offset)
}

// Withdrawals возвращает страницу заявок на вывод всех пользователей.
func (s *Service) Withdrawals(ctx context.Context, limit, offset int) ([]*models.Withdrawal, error) {
	return s.repo.ListAllWithdrawals(ctx, limit, offset)
}

// Tickets возвращает страницу обращений всех пользователей с email.
func (s *Service) Tickets(ctx context.Context, limit, offset int) ([]*models.TicketInfo, error) {
	return s.repo.ListAllTickets(ctx, limit, offset)
}

// Stats возвращает страницу показателей майнинга всех пользователей.
func (s *Service) Stats(ctx context.Context, limit, offset int) ([]*models.MiningStatInfo, error) {
	return s.repo.ListAllStats(ctx, limit, offset)
}

// ConfirmDeposit подтверждает pending-депозит: зачисляет сумму на баланс,
// сбрасывает кеш баланса владельца и публикует уведомление о зачислении.
func (s *Service) ConfirmDeposit(ctx context.Context, txID string) error {
	username, payable, err := s.repo.ConfirmDeposit(ctx, txID)
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate("balance:" + username); err != nil {
		s.log.Warn("failed to invalidate balance cache", sl.Err(err))
	}

	s.log.Info("deposit confirmed",
		slog.String("tx_id", txID),
		slog.String("username", username),
		slog.Float64("amount", payable))

	if s.publisher == nil {
		return nil
	}
	profile, err := s.repo.GetProfileByUsername(ctx, username)
	if err != nil {
		s.log.Warn("failed to load profile for notification", sl.Err(err))
		return nil
	}
	notification := models.DepositConfirmedNotification{
		Email:     profile.Email,
		Username:  username,
		TxID:      txID,
		AmountUSD: payable,
	}
	if err := s.publisher.Publish("deposit_confirmed", notification); err != nil {
		s.log.Error("failed to publish deposit notification", sl.Err(err))
	}
	return nil
}

// UpdateStat записывает показатели майнинга профиля.
func (s *Service) UpdateStat(ctx context.Context, stat models.MiningStat) error {
	stat.UpdatedAt = time.Now()
	return s.repo.UpsertStat(ctx, stat)
}
