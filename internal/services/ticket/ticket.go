// Package ticket обслуживает обращения пользователей в поддержку.
package ticket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// ErrTicketNotFound возвращается, когда обращение с указанным id отсутствует.
var ErrTicketNotFound = errors.New("ticket not found")

// Repository определяет методы хранилища для обращений в поддержку.
type Repository interface {
	CreateTicket(ctx context.Context, ticket models.SupportTicket) (int, error)
	ListTickets(ctx context.Context, username string) ([]*models.SupportTicket, error)
	RespondTicket(ctx context.Context, id int, response, status string) (int, error)
}

// Service реализует операции над обращениями в поддержку.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый Service поддержки.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create регистрирует новое обращение в статусе open.
func (s *Service) Create(ctx context.Context, username string, req models.DummyTicket) (int, error) {
	id, err := s.repo.CreateTicket(ctx, models.SupportTicket{
		Username: username,
		Subject:  req.Subject,
		Message:  req.Message,
		Status:   models.TicketStatusOpen,
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("support ticket created",
		slog.String("username", username),
		slog.Int("id", id))
	return id, nil
}

// List возвращает обращения пользователя, новые первыми.
func (s *Service) List(ctx context.Context, username string) ([]*models.SupportTicket, error) {
	return s.repo.ListTickets(ctx, username)
}

// Respond записывает ответ администратора и переводит обращение в статус
// answered, если иной статус не указан явно.
func (s *Service) Respond(ctx context.Context, id int, req models.DummyTicketResponse) error {
	status := req.Status
	if status == "" {
		status = models.TicketStatusAnswered
	}

	affected, err := s.repo.RespondTicket(ctx, id, req.Response, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTicketNotFound
	}

	s.log.Info("support ticket answered",
		slog.Int("id", id),
		slog.String("status", status))
	return nil
}
