package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ActivatePendingPlans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) DecrementActivePlans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ExpireOverduePendingPlans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindPlansExpiringTomorrow(ctx context.Context) ([]*models.UserPlanInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserPlanInfo), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_RunDaily(t *testing.T) {
	planInfo := &models.UserPlanInfo{
		Email:         "test@example.com",
		Username:      "testuser",
		PlanName:      "BTC Standard",
		RemainingDays: 1,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}

	tests := []struct {
		name       string
		setupMocks func(*MockRepository, *MockPublisher)
	}{
		{
			name: "success - full pass with one expiring plan",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ActivatePendingPlans", mock.Anything).Return(2, nil).Once()
				r.On("DecrementActivePlans", mock.Anything).Return(5, nil).Once()
				r.On("ExpireOverduePendingPlans", mock.Anything).Return(1, nil).Once()
				r.On("FindPlansExpiringTomorrow", mock.Anything).Return([]*models.UserPlanInfo{planInfo}, nil).Once()
				p.On("Publish", "plan_expiring", planInfo).Return(nil).Once()
			},
		},
		{
			name: "success - nothing to maintain",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ActivatePendingPlans", mock.Anything).Return(0, nil).Once()
				r.On("DecrementActivePlans", mock.Anything).Return(0, nil).Once()
				r.On("ExpireOverduePendingPlans", mock.Anything).Return(0, nil).Once()
				r.On("FindPlansExpiringTomorrow", mock.Anything).Return([]*models.UserPlanInfo{}, nil).Once()
			},
		},
		{
			name: "activation error does not stop the pass",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ActivatePendingPlans", mock.Anything).Return(0, errors.New("db error")).Once()
				r.On("DecrementActivePlans", mock.Anything).Return(0, nil).Once()
				r.On("ExpireOverduePendingPlans", mock.Anything).Return(0, nil).Once()
				r.On("FindPlansExpiringTomorrow", mock.Anything).Return([]*models.UserPlanInfo{}, nil).Once()
			},
		},
		{
			name: "publish error is only logged",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ActivatePendingPlans", mock.Anything).Return(0, nil).Once()
				r.On("DecrementActivePlans", mock.Anything).Return(0, nil).Once()
				r.On("ExpireOverduePendingPlans", mock.Anything).Return(0, nil).Once()
				r.On("FindPlansExpiringTomorrow", mock.Anything).Return([]*models.UserPlanInfo{planInfo}, nil).Once()
				p.On("Publish", "plan_expiring", planInfo).Return(errors.New("broker is down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			publisher := new(MockPublisher)
			tt.setupMocks(repo, publisher)

			svc := New(repo, publisher, newNoopLogger())
			svc.RunDaily(context.Background())

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}
