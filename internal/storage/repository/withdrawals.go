package repository

import (
	"context"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// CreateWithdrawal вставляет заявку на вывод со статусом pending и
// возвращает её ID. Баланс профиля при этом не списывается.
func (s *Storage) CreateWithdrawal(ctx context.Context, withdrawal models.Withdrawal) (int, error) {
	const op = "storage.CreateWithdrawal"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO withdrawals (username, amount_usd, address, currency, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		withdrawal.Username, withdrawal.AmountUSD, withdrawal.Address,
		withdrawal.Currency, withdrawal.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListWithdrawals возвращает заявки пользователя с пагинацией.
func (s *Storage) ListWithdrawals(ctx context.Context, username string, limit, offset int) ([]*models.Withdrawal, error) {
	const op = "storage.ListWithdrawals"
	return s.listWithdrawals(ctx, op,
		`SELECT id, username, amount_usd, address, currency, status, created_at
		 FROM withdrawals
		 WHERE username = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, username, limit, offset)
}

// ListAllWithdrawals возвращает все заявки для админ-консоли с пагинацией.
func (s *Storage) ListAllWithdrawals(ctx context.Context, limit, offset int) ([]*models.Withdrawal, error) {
	const op = "storage.ListAllWithdrawals"
	return s.listWithdrawals(ctx, op,
		`SELECT id, username, amount_usd, address, currency, status, created_at
		 FROM withdrawals
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
}

func (s *Storage) listWithdrawals(ctx context.Context, op, query string, args ...any) ([]*models.Withdrawal, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.Username, &w.AmountUSD, &w.Address,
			&w.Currency, &w.Status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
