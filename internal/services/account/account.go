// Package account обслуживает личный кабинет: баланс, дашборд, прямые
// пополнения, заявки на вывод и списки операций профиля.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/warrenposo/cloudmining-backend/internal/catalog"
	"github.com/warrenposo/cloudmining-backend/internal/lib/paymenturi"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Ошибки операций личного кабинета.
var (
	ErrGatewayNotFound     = errors.New("gateway not found")
	ErrAmountOutOfRange    = errors.New("amount is out of gateway bounds")
	ErrBadRate             = errors.New("conversion rate is unavailable")
	ErrInsufficientBalance = errors.New("withdrawal amount exceeds balance")
)

const balanceTTL = time.Minute

// Repository определяет методы хранилища для операций личного кабинета.
type Repository interface {
	GetBalance(ctx context.Context, username string) (float64, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetActiveAddress(ctx context.Context, gateway string) (string, error)
	CreateDeposit(ctx context.Context, deposit models.Deposit) (int, error)
	ListDeposits(ctx context.Context, username string, limit, offset int) ([]*models.Deposit, error)
	CreateWithdrawal(ctx context.Context, withdrawal models.Withdrawal) (int, error)
	ListWithdrawals(ctx context.Context, username string, limit, offset int) ([]*models.Withdrawal, error)
	ListUserPlans(ctx context.Context, username string, limit, offset int) ([]*models.UserPlan, error)
	GetStat(ctx context.Context, username string) (*models.MiningStat, error)
}

// Cache описывает методы кеша для баланса профиля.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// RateSource описывает источник курса для конвертации прямых пополнений.
type RateSource interface {
	Rate(ctx context.Context, asset string) (float64, error)
}

// Dashboard агрегирует данные для главной страницы кабинета.
type Dashboard struct {
	Email        string               `json:"email"`
	ReferralCode string               `json:"referral_code"`
	BalanceUSD   float64              `json:"balance_usd"`
	Hashrate     float64              `json:"hashrate"`
	EarningsUSD  float64              `json:"earnings_usd"`
	Plans        []*models.UserPlan   `json:"plans"`
	Deposits     []*models.Deposit    `json:"deposits"`
	Withdrawals  []*models.Withdrawal `json:"withdrawals"`
}

// Service реализует операции личного кабинета.
type Service struct {
	repo  Repository
	cache Cache
	rates RateSource
	log   *slog.Logger
}

// New создает новый Service личного кабинета.
func New(repo Repository, cache Cache, rates RateSource, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		rates: rates,
		log:   log,
	}
}

func balanceKey(username string) string { return "balance:" + username }

// Balance возвращает баланс профиля, подглядывая в кеш перед базой.
func (s *Service) Balance(ctx context.Context, username string) (float64, error) {
	var cached float64
	found, err := s.cache.Get(balanceKey(username), &cached)
	if err != nil {
		s.log.Warn("failed to read balance from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	balance, err := s.repo.GetBalance(ctx, username)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(balanceKey(username), balance, balanceTTL); err != nil {
		s.log.Warn("failed to cache balance", sl.Err(err))
	}
	return balance, nil
}

// CreateDeposit создаёт прямую заявку на пополнение: проверяет границы
// шлюза, конвертирует сумму по текущему курсу и вставляет депозит pending.
// Комиссия на прямые пополнения не начисляется.
func (s *Service) CreateDeposit(ctx context.Context, username string, req models.DummyDeposit) (*models.PaymentDetails, error) {
	gw, ok := catalog.GatewayByID(req.Gateway)
	if !ok {
		return nil, ErrGatewayNotFound
	}
	if req.AmountUSD < gw.MinUSD || req.AmountUSD > gw.MaxUSD {
		return nil, fmt.Errorf("%w: allowed %.0f-%.0f USD", ErrAmountOutOfRange, gw.MinUSD, gw.MaxUSD)
	}

	rate := 1.0
	if !gw.Stable() {
		var err error
		rate, err = s.rates.Rate(ctx, gw.PriceLookupKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRate, err)
		}
	}
	if rate <= 0 {
		return nil, ErrBadRate
	}

	address, err := s.repo.GetActiveAddress(ctx, gw.ID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		address = gw.FallbackAddress
	}

	cryptoAmount := req.AmountUSD / rate
	txID := fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])

	deposit := models.Deposit{
		TxID:           txID,
		Username:       username,
		Gateway:        gw.ID,
		AmountUSD:      req.AmountUSD,
		PayableUSD:     req.AmountUSD,
		Status:         models.DepositStatusPending,
		Address:        address,
		Currency:       gw.Currency,
		ConversionRate: rate,
		CryptoAmount:   cryptoAmount,
	}
	if _, err := s.repo.CreateDeposit(ctx, deposit); err != nil {
		return nil, err
	}

	s.log.Info("deposit request created",
		slog.String("username", username),
		slog.String("gateway", gw.ID),
		slog.String("tx_id", txID))

	return &models.PaymentDetails{
		TxID:         txID,
		Address:      address,
		PaymentURI:   paymenturi.Build(gw.Network, address, cryptoAmount),
		Currency:     gw.Currency,
		PayableUSD:   req.AmountUSD,
		CryptoAmount: paymenturi.FormatAmount(cryptoAmount),
	}, nil
}

// CreateWithdrawal создаёт заявку на вывод. Сумма больше текущего баланса
// отклоняется без записи; баланс при создании заявки не списывается.
func (s *Service) CreateWithdrawal(ctx context.Context, username string, req models.DummyWithdrawal) (int, error) {
	balance, err := s.repo.GetBalance(ctx, username)
	if err != nil {
		return 0, err
	}
	if req.AmountUSD > balance {
		return 0, fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientBalance, balance, req.AmountUSD)
	}

	id, err := s.repo.CreateWithdrawal(ctx, models.Withdrawal{
		Username:  username,
		AmountUSD: req.AmountUSD,
		Address:   req.Address,
		Currency:  req.Currency,
		Status:    models.WithdrawalStatusPending,
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("withdrawal request created",
		slog.String("username", username),
		slog.Int("id", id))
	return id, nil
}

// Deposits возвращает страницу депозитов профиля.
func (s *Service) Deposits(ctx context.Context, username string, limit, offset int) ([]*models.Deposit, error) {
	return s.repo.ListDeposits(ctx, username, limit, offset)
}

// Withdrawals возвращает страницу заявок на вывод профиля.
func (s *Service) Withdrawals(ctx context.Context, username string, limit, offset int) ([]*models.Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, username, limit, offset)
}

// Plans возвращает страницу купленных планов профиля.
func (s *Service) Plans(ctx context.Context, username string, limit, offset int) ([]*models.UserPlan, error) {
	return s.repo.ListUserPlans(ctx, username, limit, offset)
}

// Dashboard собирает сводку кабинета: профиль, баланс, показатели майнинга
// и последние операции.
func (s *Service) Dashboard(ctx context.Context, username string) (*Dashboard, error) {
	profile, err := s.repo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	balance, err := s.Balance(ctx, username)
	if err != nil {
		return nil, err
	}
	stat, err := s.repo.GetStat(ctx, username)
	if err != nil {
		return nil, err
	}
	plans, err := s.repo.ListUserPlans(ctx, username, 10, 0)
	if err != nil {
		return nil, err
	}
	deposits, err := s.repo.ListDeposits(ctx, username, 5, 0)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.repo.ListWithdrawals(ctx, username, 5, 0)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Email:        profile.Email,
		ReferralCode: profile.ReferralCode,
		BalanceUSD:   balance,
		Hashrate:     stat.Hashrate,
		EarningsUSD:  stat.EarningsUSD,
		Plans:        plans,
		Deposits:     deposits,
		Withdrawals:  withdrawals,
	}, nil
}
