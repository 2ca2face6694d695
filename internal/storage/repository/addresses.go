package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetActiveAddress возвращает активный адрес расчёта для шлюза.
// Возвращает пустую строку без ошибки, если адрес не настроен, —
// вызывающий подставляет резервный адрес из каталога.
func (s *Storage) GetActiveAddress(ctx context.Context, gateway string) (string, error) {
	const op = "storage.GetActiveAddress"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT address FROM deposit_addresses
			  WHERE gateway = $1 AND active = true
			  ORDER BY id DESC
			  LIMIT 1`
	var address string
	err := s.DB.QueryRowContext(ctx, query, gateway).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return address, nil
}
