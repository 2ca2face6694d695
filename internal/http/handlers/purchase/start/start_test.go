package start

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/models"
	"github.com/warrenposo/cloudmining-backend/internal/services/purchase"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Start(ctx context.Context, username, planID string) (*models.PurchaseSession, error) {
	args := m.Called(ctx, username, planID)
	session, _ := args.Get(0).(*models.PurchaseSession)
	return session, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestStartHandler_ServeHTTP(t *testing.T) {
	session := &models.PurchaseSession{
		Username:   "warren",
		State:      models.PurchaseStateForm,
		PlanID:     "btc-standard",
		ChargeUSD:  4,
		PayableUSD: 204,
	}

	tests := []struct {
		name           string
		requestBody    any
		withUser       bool
		mockSession    *models.PurchaseSession
		mockErr        error
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:           "purchase started",
			requestBody:    models.DummyPurchaseStart{PlanID: "btc-standard"},
			withUser:       true,
			mockSession:    session,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:        "insufficient funds returns deficit",
			requestBody: models.DummyPurchaseStart{PlanID: "btc-standard"},
			withUser:    true,
			mockErr: &purchase.InsufficientFundsError{InsufficientFunds: models.InsufficientFunds{
				RequiredUSD: 204,
				BalanceUSD:  100,
				DeficitUSD:  104,
			}},
			wantStatusCode: http.StatusPaymentRequired,
			wantStatus:     "Error",
		},
		{
			name:           "plan not found",
			requestBody:    models.DummyPurchaseStart{PlanID: "no-such-plan"},
			withUser:       true,
			mockErr:        purchase.ErrPlanNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
		},
		{
			name:           "unauthorized without user in context",
			requestBody:    models.DummyPurchaseStart{PlanID: "btc-standard"},
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
		},
		{
			name:           "validation error - empty plan",
			requestBody:    models.DummyPurchaseStart{},
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if req, ok := tt.requestBody.(models.DummyPurchaseStart); ok && req.PlanID != "" && tt.withUser {
				serviceMock.On("Start", mock.Anything, "warren", req.PlanID).
					Return(tt.mockSession, tt.mockErr).Once()
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/purchase/start", bytes.NewReader(bodyBytes))
			if tt.withUser {
				ctx := context.WithValue(req.Context(), middlewarectx.User, "warren")
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])

			if tt.wantStatusCode == http.StatusPaymentRequired {
				data := resp["data"].(map[string]any)
				assert.InDelta(t, 104, data["deficit_usd"].(float64), 1e-9)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
