package withdrawcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
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
	"github.com/warrenposo/cloudmining-backend/internal/services/account"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateWithdrawal(ctx context.Context, username string, req models.DummyWithdrawal) (int, error) {
	args := m.Called(ctx, username, req)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestWithdrawCreateHandler_ServeHTTP(t *testing.T) {
	valid := models.DummyWithdrawal{AmountUSD: 200, Address: "bc1qexample", Currency: "BTC"}

	tests := []struct {
		name           string
		requestBody    any
		mockID         int
		mockErr        error
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:           "withdrawal created",
			requestBody:    valid,
			mockID:         9,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "amount exceeds balance",
			requestBody:    valid,
			mockErr:        fmt.Errorf("%w: balance 100.00, requested 200.00", account.ErrInsufficientBalance),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
		{
			name:           "validation error - zero amount",
			requestBody:    models.DummyWithdrawal{Address: "bc1qexample", Currency: "BTC"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if req, ok := tt.requestBody.(models.DummyWithdrawal); ok && req.AmountUSD > 0 {
				serviceMock.On("CreateWithdrawal", mock.Anything, "warren", req).
					Return(tt.mockID, tt.mockErr).Once()
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middlewarectx.User, "warren")
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])

			serviceMock.AssertExpectations(t)
		})
	}
}
