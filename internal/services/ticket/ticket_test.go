package ticket

import (
	"context"
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

func (m *mockRepository) CreateTicket(ctx context.Context, ticket models.SupportTicket) (int, error) {
	args := m.Called(ctx, ticket)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) ListTickets(ctx context.Context, username string) ([]*models.SupportTicket, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]*models.SupportTicket), args.Error(1)
}

func (m *mockRepository) RespondTicket(ctx context.Context, id int, response, status string) (int, error) {
	args := m.Called(ctx, id, response, status)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Create(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateTicket", mock.Anything, models.SupportTicket{
		Username: "warren",
		Subject:  "Вывод завис",
		Message:  "Заявка три дня в pending",
		Status:   models.TicketStatusOpen,
	}).Return(4, nil)

	svc := New(repo, discardLogger())

	id, err := svc.Create(context.Background(), "warren", models.DummyTicket{
		Subject: "Вывод завис",
		Message: "Заявка три дня в pending",
	})

	require.NoError(t, err)
	assert.Equal(t, 4, id)
	repo.AssertExpectations(t)
}

func TestService_Respond(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyTicketResponse
		affected   int
		wantStatus string
		wantErr    error
	}{
		{
			name:       "Без явного статуса обращение переходит в answered",
			req:        models.DummyTicketResponse{Response: "Исправили"},
			affected:   1,
			wantStatus: models.TicketStatusAnswered,
		},
		{
			name:       "Явный статус closed сохраняется",
			req:        models.DummyTicketResponse{Response: "Дубликат", Status: models.TicketStatusClosed},
			affected:   1,
			wantStatus: models.TicketStatusClosed,
		},
		{
			name:       "Несуществующее обращение",
			req:        models.DummyTicketResponse{Response: "Исправили"},
			affected:   0,
			wantStatus: models.TicketStatusAnswered,
			wantErr:    ErrTicketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			repo.On("RespondTicket", mock.Anything, 7, tt.req.Response, tt.wantStatus).Return(tt.affected, nil)

			svc := New(repo, discardLogger())

			err := svc.Respond(context.Background(), 7, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
