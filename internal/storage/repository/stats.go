package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// UpsertStat создаёт или обновляет показатели майнинга профиля.
func (s *Storage) UpsertStat(ctx context.Context, stat models.MiningStat) error {
	const op = "storage.UpsertStat"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO mining_stats (username, hashrate, earnings_usd, updated_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (username) DO UPDATE
			  SET hashrate = EXCLUDED.hashrate,
			      earnings_usd = EXCLUDED.earnings_usd,
			      updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, stat.Username, stat.Hashrate, stat.EarningsUSD); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetStat возвращает показатели майнинга пользователя.
// Возвращает нулевые показатели без ошибки, если записи ещё нет.
func (s *Storage) GetStat(ctx context.Context, username string) (*models.MiningStat, error) {
	const op = "storage.GetStat"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, hashrate, earnings_usd, updated_at
			  FROM mining_stats
			  WHERE username = $1`
	var st models.MiningStat
	err := s.DB.QueryRowContext(ctx, query, username).Scan(&st.ID, &st.Username,
		&st.Hashrate, &st.EarningsUSD, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.MiningStat{Username: username}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}

// ListAllStats возвращает показатели всех профилей вместе с email владельцев
// одним запросом с JOIN.
func (s *Storage) ListAllStats(ctx context.Context, limit, offset int) ([]*models.MiningStatInfo, error) {
	const op = "storage.ListAllStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT st.id, st.username, st.hashrate, st.earnings_usd, st.updated_at, p.email
			  FROM mining_stats st
			  JOIN profiles p ON st.username = p.username
			  ORDER BY st.updated_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.MiningStatInfo
	for rows.Next() {
		var info models.MiningStatInfo
		if err := rows.Scan(&info.ID, &info.Username, &info.Hashrate,
			&info.EarningsUSD, &info.UpdatedAt, &info.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
