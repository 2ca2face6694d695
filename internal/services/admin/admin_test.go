package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *mockRepository) ListAllDeposits(ctx context.Context, limit, offset int) ([]*models.Deposit, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Deposit), args.Error(1)
}

func (m *mockRepository) ListAllWithdrawals(ctx context.Context, limit, offset int) ([]*models.Withdrawal, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Withdrawal), args.Error(1)
}

func (m *mockRepository) ListAllTickets(ctx context.Context, limit, offset int) ([]*models.TicketInfo, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.TicketInfo), args.Error(1)
}

func (m *mockRepository) ListAllStats(ctx context.Context, limit, offset int) ([]*models.MiningStatInfo, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.MiningStatInfo), args.Error(1)
}

func (m *mockRepository) ConfirmDeposit(ctx context.Context, txID string) (string, float64, error) {
	args := m.Called(ctx, txID)
	return args.String(0), args.Get(1).(float64), args.Error(2)
}

func (m *mockRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockRepository) UpsertStat(ctx context.Context, stat models.MiningStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_ConfirmDeposit(t *testing.T) {
	t.Run("Зачисление сбрасывает кеш и публикует уведомление", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ConfirmDeposit", mock.Anything, "TXN-1").Return("warren", 204.0, nil)
		repo.On("GetProfileByUsername", mock.Anything, "warren").
			Return(&models.Profile{Email: "warren@example.com", Username: "warren"}, nil)

		cache := new(mockCache)
		cache.On("Invalidate", "balance:warren").Return(nil)

		publisher := new(mockPublisher)
		publisher.On("Publish", "deposit_confirmed", models.DepositConfirmedNotification{
			Email:     "warren@example.com",
			Username:  "warren",
			TxID:      "TXN-1",
			AmountUSD: 204,
		}).Return(nil)

		svc := New(repo, cache, publisher, discardLogger())

		err := svc.ConfirmDeposit(context.Background(), "TXN-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Ошибка подтверждения не трогает кеш и очередь", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ConfirmDeposit", mock.Anything, "TXN-404").
			Return("", 0.0, errors.New("deposit is not pending"))

		cache := new(mockCache)
		publisher := new(mockPublisher)

		svc := New(repo, cache, publisher, discardLogger())

		err := svc.ConfirmDeposit(context.Background(), "TXN-404")

		require.Error(t, err)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Без издателя зачисление проходит молча", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ConfirmDeposit", mock.Anything, "TXN-2").Return("warren", 100.0, nil)

		cache := new(mockCache)
		cache.On("Invalidate", "balance:warren").Return(nil)

		svc := New(repo, cache, nil, discardLogger())

		err := svc.ConfirmDeposit(context.Background(), "TXN-2")

		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetProfileByUsername", mock.Anything, mock.Anything)
	})
}

func TestService_Lists(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListProfiles", mock.Anything, 50, 0).Return([]*models.Profile{{Username: "warren"}}, nil)
	repo.On("ListAllTickets", mock.Anything, 50, 0).Return([]*models.TicketInfo{
		{SupportTicket: models.SupportTicket{Subject: "Вывод завис"}, Email: "warren@example.com"},
	}, nil)

	svc := New(repo, new(mockCache), nil, discardLogger())

	profiles, err := svc.Profiles(context.Background(), 50, 0)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	tickets, err := svc.Tickets(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "warren@example.com", tickets[0].Email)
}
