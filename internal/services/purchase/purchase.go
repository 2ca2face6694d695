// Package purchase реализует поток покупки тарифного плана: короткоживущую
// машину состояний form → preview → payment поверх кешированной сессии.
//
// Подтверждение покупки выполняется как сага с ключом идемпотентности:
// неудачная вставка пользовательского плана помечает депозит failed
// (компенсация), а повторное подтверждение с тем же ключом переиспользует
// прежний депозит вместо создания дубликатов.
package purchase

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

// Ошибки потока покупки.
var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrGatewayNotFound = errors.New("gateway not found")
	ErrNoGateway       = errors.New("gateway is not selected")
	ErrNoSession       = errors.New("purchase session not found")
	ErrWrongState      = errors.New("operation is not allowed in current state")
	ErrBadRate         = errors.New("conversion rate is unavailable")
)

// ErrGatewayOutOfRange возвращается, когда цена плана выходит за границы
// шлюза; выбор шлюза при этом сбрасывается.
var ErrGatewayOutOfRange = errors.New("plan price is out of gateway bounds")

// InsufficientFundsError сообщает о нехватке средств при старте покупки.
type InsufficientFundsError struct {
	models.InsufficientFunds
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %.2f, balance %.2f, deficit %.2f",
		e.RequiredUSD, e.BalanceUSD, e.DeficitUSD)
}

// Комиссия покупки: 2% от цены плана.
const feeRate = 0.02

const (
	sessionTTL = 30 * time.Minute
	balanceTTL = time.Minute
)

// Repository определяет методы хранилища, используемые потоком покупки.
type Repository interface {
	GetBalance(ctx context.Context, username string) (float64, error)
	GetActiveAddress(ctx context.Context, gateway string) (string, error)
	CreateDeposit(ctx context.Context, deposit models.Deposit) (int, error)
	FindDepositByIdempotencyKey(ctx context.Context, key string) (*models.Deposit, bool, error)
	UpdateDepositStatus(ctx context.Context, txID, status string) (int, error)
	GetOrCreateCatalogPlan(ctx context.Context, plan models.CatalogPlan) (int, error)
	CreateUserPlan(ctx context.Context, plan models.UserPlan, depositTxID string) (int, error)
	FindUserPlanByDepositTxID(ctx context.Context, txID string) (int, bool, error)
}

// Cache описывает методы для хранения сессий покупки и балансов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// RateSource описывает источник живого курса для конвертации на превью.
type RateSource interface {
	Rate(ctx context.Context, asset string) (float64, error)
}

// Service реализует машину состояний покупки плана.
type Service struct {
	repo  Repository
	cache Cache
	rates RateSource
	log   *slog.Logger
}

// New создает новый Service потока покупки.
func New(repo Repository, cache Cache, rates RateSource, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		rates: rates,
		log:   log,
	}
}

func sessionKey(username string) string { return "purchase:" + username }
func balanceKey(username string) string { return "balance:" + username }

// Start начинает покупку: обновляет кешированный баланс, проверяет
// достаточность средств и создаёт сессию в состоянии form с посчитанными
// комиссией и суммой к оплате. При нехватке средств сессия не создаётся,
// возвращается InsufficientFundsError с дефицитом.
func (s *Service) Start(ctx context.Context, username, planID string) (*models.PurchaseSession, error) {
	plan, ok := catalog.PlanByID(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}

	balance, err := s.refreshBalance(ctx, username)
	if err != nil {
		return nil, err
	}

	charge := plan.PriceUSD * feeRate
	required := plan.PriceUSD + charge
	if balance < required {
		return nil, &InsufficientFundsError{models.InsufficientFunds{
			RequiredUSD: required,
			BalanceUSD:  balance,
			DeficitUSD:  required - balance,
		}}
	}

	session := &models.PurchaseSession{
		Username:       username,
		State:          models.PurchaseStateForm,
		PlanID:         plan.ID,
		ChargeUSD:      charge,
		PayableUSD:     required,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now(),
	}
	if err := s.saveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectGateway выбирает платёжный шлюз в состоянии form. Цена плана вне
// границ шлюза сбрасывает выбор и возвращает ошибку, состояние не меняется.
func (s *Service) SelectGateway(ctx context.Context, username, gatewayID string) (*models.PurchaseSession, error) {
	session, err := s.loadSession(username)
	if err != nil {
		return nil, err
	}
	if session.State != models.PurchaseStateForm {
		return nil, ErrWrongState
	}

	gw, ok := catalog.GatewayByID(gatewayID)
	if !ok {
		return nil, ErrGatewayNotFound
	}
	plan, ok := catalog.PlanByID(session.PlanID)
	if !ok {
		return nil, ErrPlanNotFound
	}

	if plan.PriceUSD < gw.MinUSD || plan.PriceUSD > gw.MaxUSD {
		session.Gateway = ""
		if err := s.saveSession(session); err != nil {
			return nil, err
		}
		return session, fmt.Errorf("%w: allowed %.0f-%.0f USD", ErrGatewayOutOfRange, gw.MinUSD, gw.MaxUSD)
	}

	session.Gateway = gw.ID
	if err := s.saveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit завершает форму: получает курс конвертации (1 для стейблкоинов,
// живой курс для остальных), считает сумму в криптовалюте и переводит
// сессию в preview. Отсутствующий или нулевой курс оставляет сессию в form.
func (s *Service) Submit(ctx context.Context, username string) (*models.PurchaseSession, error) {
	session, err := s.loadSession(username)
	if err != nil {
		return nil, err
	}
	if session.State != models.PurchaseStateForm {
		return nil, ErrWrongState
	}
	if session.Gateway == "" {
		return nil, ErrNoGateway
	}

	gw, ok := catalog.GatewayByID(session.Gateway)
	if !ok {
		return nil, ErrGatewayNotFound
	}

	rate := 1.0
	if !gw.Stable() {
		rate, err = s.rates.Rate(ctx, gw.PriceLookupKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRate, err)
		}
	}
	if rate <= 0 {
		return nil, ErrBadRate
	}

	session.ConversionRate = rate
	session.CryptoAmount = session.PayableUSD / rate
	session.State = models.PurchaseStatePreview
	if err := s.saveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Confirm подтверждает покупку из состояния preview. Шаги по порядку:
// поиск активного адреса расчёта с откатом на резервный адрес каталога,
// вставка депозита pending, идемпотентное создание плана в удалённом
// каталоге, вставка пользовательского плана. Неудача после вставки
// депозита помечает его failed и оставляет сессию в preview; повторное
// подтверждение переиспользует депозит по ключу идемпотентности.
func (s *Service) Confirm(ctx context.Context, username string) (*models.PaymentDetails, error) {
	session, err := s.loadSession(username)
	if err != nil {
		return nil, err
	}
	if session.State == models.PurchaseStatePayment {
		// Подтверждение уже прошло: вернуть прежние детали без записи.
		return s.detailsFromExisting(ctx, session)
	}
	if session.State != models.PurchaseStatePreview {
		return nil, ErrWrongState
	}

	plan, ok := catalog.PlanByID(session.PlanID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	gw, ok := catalog.GatewayByID(session.Gateway)
	if !ok {
		return nil, ErrGatewayNotFound
	}

	txID, address, reused, err := s.ensureDeposit(ctx, session, plan, gw)
	if err != nil {
		return nil, err
	}

	catalogID, err := s.repo.GetOrCreateCatalogPlan(ctx, models.CatalogPlan{
		Name:         plan.Name,
		Family:       plan.Family,
		PriceUSD:     plan.PriceUSD,
		DurationDays: plan.DurationDays,
	})
	if err != nil {
		s.compensate(ctx, txID)
		return nil, err
	}

	// У переиспользованного депозита план мог быть вставлен прежней
	// попыткой, упавшей уже после записей в базу.
	planExists := false
	if reused {
		_, planExists, err = s.repo.FindUserPlanByDepositTxID(ctx, txID)
		if err != nil {
			s.compensate(ctx, txID)
			return nil, err
		}
	}
	if !planExists {
		userPlan := models.UserPlan{
			Username:      username,
			CatalogPlanID: catalogID,
			PlanName:      plan.Name,
			TotalDays:     plan.DurationDays,
			RemainingDays: plan.DurationDays,
			Status:        models.UserPlanStatusPending,
			ExpiresAt:     time.Now().AddDate(0, 0, plan.DurationDays),
		}
		if _, err := s.repo.CreateUserPlan(ctx, userPlan, txID); err != nil {
			s.compensate(ctx, txID)
			return nil, err
		}
	}

	session.State = models.PurchaseStatePayment
	if err := s.saveSession(session); err != nil {
		return nil, err
	}

	s.log.Info("purchase confirmed",
		slog.String("username", username),
		slog.String("plan", plan.ID),
		slog.String("tx_id", txID))

	return &models.PaymentDetails{
		TxID:         txID,
		Address:      address,
		PaymentURI:   paymenturi.Build(gw.Network, address, session.CryptoAmount),
		Currency:     gw.Currency,
		PayableUSD:   session.PayableUSD,
		CryptoAmount: paymenturi.FormatAmount(session.CryptoAmount),
	}, nil
}

// Restart отбрасывает текущую сессию: действие "назад"/"новая покупка".
func (s *Service) Restart(_ context.Context, username string) error {
	return s.cache.Invalidate(sessionKey(username))
}

// Get возвращает текущую сессию покупки пользователя.
func (s *Service) Get(_ context.Context, username string) (*models.PurchaseSession, error) {
	return s.loadSession(username)
}

// ensureDeposit вставляет депозит попытки или переиспользует существующий
// по ключу идемпотентности. Депозит прежней неудачной попытки возвращается
// в pending вместо создания новой строки.
func (s *Service) ensureDeposit(ctx context.Context, session *models.PurchaseSession,
	plan models.Plan, gw models.Gateway) (txID, address string, reused bool, err error) {
	existing, found, err := s.repo.FindDepositByIdempotencyKey(ctx, session.IdempotencyKey)
	if err != nil {
		return "", "", false, err
	}
	if found {
		if existing.Status == models.DepositStatusFailed {
			if _, err := s.repo.UpdateDepositStatus(ctx, existing.TxID, models.DepositStatusPending); err != nil {
				return "", "", false, err
			}
		}
		return existing.TxID, existing.Address, true, nil
	}

	address, err = s.repo.GetActiveAddress(ctx, gw.ID)
	if err != nil {
		return "", "", false, err
	}
	if address == "" {
		address = gw.FallbackAddress
	}

	txID = newTxID()
	deposit := models.Deposit{
		TxID:           txID,
		Username:       session.Username,
		Gateway:        gw.ID,
		AmountUSD:      plan.PriceUSD,
		FeeUSD:         session.ChargeUSD,
		PayableUSD:     session.PayableUSD,
		Status:         models.DepositStatusPending,
		Address:        address,
		Currency:       gw.Currency,
		ConversionRate: session.ConversionRate,
		CryptoAmount:   session.CryptoAmount,
		IdempotencyKey: session.IdempotencyKey,
	}
	if _, err := s.repo.CreateDeposit(ctx, deposit); err != nil {
		return "", "", false, err
	}
	return txID, address, false, nil
}

// compensate помечает депозит попытки failed после неудачного шага саги.
func (s *Service) compensate(ctx context.Context, txID string) {
	if _, err := s.repo.UpdateDepositStatus(ctx, txID, models.DepositStatusFailed); err != nil {
		s.log.Error("failed to mark deposit as failed", sl.Err(err), slog.String("tx_id", txID))
	}
}

// detailsFromExisting восстанавливает детали оплаты из депозита попытки.
func (s *Service) detailsFromExisting(ctx context.Context, session *models.PurchaseSession) (*models.PaymentDetails, error) {
	existing, found, err := s.repo.FindDepositByIdempotencyKey(ctx, session.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSession
	}
	gw, ok := catalog.GatewayByID(existing.Gateway)
	if !ok {
		return nil, ErrGatewayNotFound
	}
	return &models.PaymentDetails{
		TxID:         existing.TxID,
		Address:      existing.Address,
		PaymentURI:   paymenturi.Build(gw.Network, existing.Address, existing.CryptoAmount),
		Currency:     existing.Currency,
		PayableUSD:   existing.PayableUSD,
		CryptoAmount: paymenturi.FormatAmount(existing.CryptoAmount),
	}, nil
}

func (s *Service) refreshBalance(ctx context.Context, username string) (float64, error) {
	balance, err := s.repo.GetBalance(ctx, username)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(balanceKey(username), balance, balanceTTL); err != nil {
		s.log.Warn("failed to cache balance", sl.Err(err))
	}
	return balance, nil
}

func (s *Service) loadSession(username string) (*models.PurchaseSession, error) {
	var session models.PurchaseSession
	found, err := s.cache.Get(sessionKey(username), &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSession
	}
	return &session, nil
}

func (s *Service) saveSession(session *models.PurchaseSession) error {
	return s.cache.Set(sessionKey(session.Username), session, sessionTTL)
}

func newTxID() string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
