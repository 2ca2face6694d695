package account

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetBalance(ctx context.Context, username string) (float64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	var p *models.Profile
	if args.Get(0) != nil {
		p = args.Get(0).(*models.Profile)
	}
	return p, args.Error(1)
}

func (m *mockRepository) GetActiveAddress(ctx context.Context, gateway string) (string, error) {
	args := m.Called(ctx, gateway)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) CreateDeposit(ctx context.Context, deposit models.Deposit) (int, error) {
	args := m.Called(ctx, deposit)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) ListDeposits(ctx context.Context, username string, limit, offset int) ([]*models.Deposit, error) {
	args := m.Called(ctx, username, limit, offset)
	return args.Get(0).([]*models.Deposit), args.Error(1)
}

func (m *mockRepository) CreateWithdrawal(ctx context.Context, withdrawal models.Withdrawal) (int, error) {
	args := m.Called(ctx, withdrawal)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) ListWithdrawals(ctx context.Context, username string, limit, offset int) ([]*models.Withdrawal, error) {
	args := m.Called(ctx, username, limit, offset)
	return args.Get(0).([]*models.Withdrawal), args.Error(1)
}

func (m *mockRepository) ListUserPlans(ctx context.Context, username string, limit, offset int) ([]*models.UserPlan, error) {
	args := m.Called(ctx, username, limit, offset)
	return args.Get(0).([]*models.UserPlan), args.Error(1)
}

func (m *mockRepository) GetStat(ctx context.Context, username string) (*models.MiningStat, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(*models.MiningStat), args.Error(1)
}

type mockRates struct {
	mock.Mock
}

func (m *mockRates) Rate(ctx context.Context, asset string) (float64, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(float64), args.Error(1)
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string, result any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Invalidate(key string) error {
	delete(c.data, key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Balance_CacheAside(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetBalance", mock.Anything, "warren").Return(320.5, nil).Once()

	svc := New(repo, newFakeCache(), new(mockRates), discardLogger())

	first, err := svc.Balance(context.Background(), "warren")
	require.NoError(t, err)
	assert.InDelta(t, 320.5, first, 1e-9)

	// Второе чтение обслуживается кешем, база не трогается.
	second, err := svc.Balance(context.Background(), "warren")
	require.NoError(t, err)
	assert.InDelta(t, 320.5, second, 1e-9)

	repo.AssertNumberOfCalls(t, "GetBalance", 1)
}

func TestService_CreateDeposit(t *testing.T) {
	tests := []struct {
		name      string
		req       models.DummyDeposit
		rate      float64
		rateErr   error
		wantErr   error
		wantCoins string
	}{
		{
			name:      "Стейблкоин: курс 1 без обращения к индексу цен",
			req:       models.DummyDeposit{Gateway: "usdt-trc20", AmountUSD: 150},
			wantCoins: "150.00000000",
		},
		{
			name:      "Живой курс для эфира",
			req:       models.DummyDeposit{Gateway: "eth", AmountUSD: 300},
			rate:      3000,
			wantCoins: "0.10000000",
		},
		{
			name:    "Сумма ниже минимума шлюза",
			req:     models.DummyDeposit{Gateway: "btc", AmountUSD: 50},
			wantErr: ErrAmountOutOfRange,
		},
		{
			name:    "Сумма выше максимума шлюза",
			req:     models.DummyDeposit{Gateway: "trx", AmountUSD: 500000},
			wantErr: ErrAmountOutOfRange,
		},
		{
			name:    "Неизвестный шлюз",
			req:     models.DummyDeposit{Gateway: "dogecoin", AmountUSD: 100},
			wantErr: ErrGatewayNotFound,
		},
		{
			name:    "Курс недоступен",
			req:     models.DummyDeposit{Gateway: "eth", AmountUSD: 300},
			rateErr: errors.New("price feed is down"),
			wantErr: ErrBadRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			repo.On("GetActiveAddress", mock.Anything, tt.req.Gateway).Return("addr-1", nil).Maybe()
			repo.On("CreateDeposit", mock.Anything, mock.AnythingOfType("models.Deposit")).Return(1, nil).Maybe()
			rates := new(mockRates)
			rates.On("Rate", mock.Anything, mock.AnythingOfType("string")).Return(tt.rate, tt.rateErr).Maybe()

			svc := New(repo, newFakeCache(), rates, discardLogger())

			details, err := svc.CreateDeposit(context.Background(), "warren", tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateDeposit", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCoins, details.CryptoAmount)
				assert.Equal(t, "addr-1", details.Address)
				assert.InDelta(t, tt.req.AmountUSD, details.PayableUSD, 1e-9)
			}
		})
	}
}

func TestService_CreateWithdrawal(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		amount  float64
		wantErr error
	}{
		{
			name:    "Заявка в пределах баланса создаётся",
			balance: 500,
			amount:  200,
		},
		{
			name:    "Сумма больше баланса отклоняется без записи",
			balance: 100,
			amount:  250,
			wantErr: ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			repo.On("GetBalance", mock.Anything, "warren").Return(tt.balance, nil)
			repo.On("CreateWithdrawal", mock.Anything, mock.MatchedBy(func(w models.Withdrawal) bool {
				return w.Username == "warren" &&
					w.Status == models.WithdrawalStatusPending &&
					w.AmountUSD == tt.amount
			})).Return(9, nil).Maybe()

			svc := New(repo, newFakeCache(), new(mockRates), discardLogger())

			id, err := svc.CreateWithdrawal(context.Background(), "warren", models.DummyWithdrawal{
				AmountUSD: tt.amount,
				Address:   "bc1qexample",
				Currency:  "BTC",
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateWithdrawal", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 9, id)
			}
		})
	}
}

func TestService_Dashboard(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetProfileByUsername", mock.Anything, "warren").Return(&models.Profile{
		Email:        "warren@example.com",
		Username:     "warren",
		ReferralCode: "REF0A1B2C3D",
	}, nil)
	repo.On("GetBalance", mock.Anything, "warren").Return(320.5, nil)
	repo.On("GetStat", mock.Anything, "warren").Return(&models.MiningStat{
		Hashrate:    12.5,
		EarningsUSD: 48.2,
	}, nil)
	repo.On("ListUserPlans", mock.Anything, "warren", 10, 0).Return([]*models.UserPlan{{PlanName: "BTC Standard"}}, nil)
	repo.On("ListDeposits", mock.Anything, "warren", 5, 0).Return([]*models.Deposit{{TxID: "TXN-1"}}, nil)
	repo.On("ListWithdrawals", mock.Anything, "warren", 5, 0).Return([]*models.Withdrawal{}, nil)

	svc := New(repo, newFakeCache(), new(mockRates), discardLogger())

	dashboard, err := svc.Dashboard(context.Background(), "warren")

	require.NoError(t, err)
	assert.Equal(t, "warren@example.com", dashboard.Email)
	assert.InDelta(t, 320.5, dashboard.BalanceUSD, 1e-9)
	assert.InDelta(t, 12.5, dashboard.Hashrate, 1e-9)
	assert.Len(t, dashboard.Plans, 1)
	assert.Len(t, dashboard.Deposits, 1)
	assert.Empty(t, dashboard.Withdrawals)
	repo.AssertExpectations(t)
}
