package repository

import (
	"context"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// CreateTicket вставляет обращение в поддержку со статусом open.
func (s *Storage) CreateTicket(ctx context.Context, ticket models.SupportTicket) (int, error) {
	const op = "storage.CreateTicket"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO support_tickets (username, subject, message, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		ticket.Username, ticket.Subject, ticket.Message, ticket.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListTickets возвращает обращения пользователя.
func (s *Storage) ListTickets(ctx context.Context, username string) ([]*models.SupportTicket, error) {
	const op = "storage.ListTickets"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, subject, message, status, COALESCE(admin_response, ''), created_at
			  FROM support_tickets
			  WHERE username = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SupportTicket
	for rows.Next() {
		var t models.SupportTicket
		if err := rows.Scan(&t.ID, &t.Username, &t.Subject, &t.Message,
			&t.Status, &t.AdminResponse, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllTickets возвращает все обращения вместе с email отправителей
// одним запросом с JOIN, без дополнительного чтения на каждую строку.
func (s *Storage) ListAllTickets(ctx context.Context, limit, offset int) ([]*models.TicketInfo, error) {
	const op = "storage.ListAllTickets"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT t.id, t.username, t.subject, t.message, t.status,
			      COALESCE(t.admin_response, ''), t.created_at, p.email
			  FROM support_tickets t
			  JOIN profiles p ON t.username = p.username
			  ORDER BY t.created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.TicketInfo
	for rows.Next() {
		var info models.TicketInfo
		if err := rows.Scan(&info.ID, &info.Username, &info.Subject, &info.Message,
			&info.Status, &info.AdminResponse, &info.CreatedAt, &info.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RespondTicket сохраняет ответ администратора и новый статус обращения,
// возвращает количество изменённых строк.
func (s *Storage) RespondTicket(ctx context.Context, id int, response, status string) (int, error) {
	const op = "storage.RespondTicket"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE support_tickets
			  SET admin_response = $1, status = $2
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, response, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
