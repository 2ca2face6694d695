package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// CreateUserPlan вставляет запись купленного плана и возвращает её ID.
// На deposit_tx_id действует уникальное ограничение: повторная вставка
// для того же депозита возвращает ID существующей строки вместо дубликата.
func (s *Storage) CreateUserPlan(ctx context.Context, plan models.UserPlan, depositTxID string) (int, error) {
	const op = "storage.CreateUserPlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_plans (username, plan_id, plan_name, total_days, remaining_days,
			      status, expires_at, deposit_tx_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
			  ON CONFLICT (deposit_tx_id) DO NOTHING
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		plan.Username, plan.CatalogPlanID, plan.PlanName, plan.TotalDays,
		plan.RemainingDays, plan.Status, plan.ExpiresAt, depositTxID).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) && depositTxID != "" {
		existingID, found, findErr := s.FindUserPlanByDepositTxID(ctx, depositTxID)
		if findErr != nil {
			return 0, fmt.Errorf("%s: %w", op, findErr)
		}
		if found {
			return existingID, nil
		}
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindUserPlanByDepositTxID ищет план, привязанный к депозиту попытки покупки.
func (s *Storage) FindUserPlanByDepositTxID(ctx context.Context, txID string) (int, bool, error) {
	const op = "storage.FindUserPlanByDepositTxID"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM user_plans WHERE deposit_tx_id = $1`, txID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return id, true, nil
}

// ListUserPlans возвращает планы пользователя с пагинацией.
func (s *Storage) ListUserPlans(ctx context.Context, username string, limit, offset int) ([]*models.UserPlan, error) {
	const op = "storage.ListUserPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, plan_id, plan_name, total_days, remaining_days,
			      status, expires_at, created_at
			  FROM user_plans
			  WHERE username = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, username, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserPlan
	for rows.Next() {
		var up models.UserPlan
		if err := rows.Scan(&up.ID, &up.Username, &up.CatalogPlanID, &up.PlanName,
			&up.TotalDays, &up.RemainingDays, &up.Status, &up.ExpiresAt, &up.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &up)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ActivatePendingPlans переводит в active планы, чей депозит подтверждён,
// и возвращает количество активированных строк.
func (s *Storage) ActivatePendingPlans(ctx context.Context) (int, error) {
	const op = "storage.ActivatePendingPlans"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_plans up
			  SET status = $1
			  FROM deposits d
			  WHERE up.deposit_tx_id = d.tx_id
			    AND up.status = $2
			    AND d.status = $3`
	result, err := s.DB.ExecContext(ctx, query,
		models.UserPlanStatusActive, models.UserPlanStatusPending, models.DepositStatusConfirmed)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DecrementActivePlans уменьшает remaining_days активных планов на единицу,
// а исчерпанные переводит в completed. Возвращает количество затронутых строк.
func (s *Storage) DecrementActivePlans(ctx context.Context) (int, error) {
	const op = "storage.DecrementActivePlans"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_plans
			  SET remaining_days = GREATEST(remaining_days - 1, 0),
			      status = CASE WHEN remaining_days - 1 <= 0 THEN $1 ELSE status END
			  WHERE status = $2`
	result, err := s.DB.ExecContext(ctx, query,
		models.UserPlanStatusCompleted, models.UserPlanStatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ExpireOverduePendingPlans переводит просроченные pending-планы в expired.
func (s *Storage) ExpireOverduePendingPlans(ctx context.Context) (int, error) {
	const op = "storage.ExpireOverduePendingPlans"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_plans
			  SET status = $1
			  WHERE status = $2 AND expires_at < CURRENT_DATE`
	result, err := s.DB.ExecContext(ctx, query,
		models.UserPlanStatusExpired, models.UserPlanStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindPlansExpiringTomorrow находит активные планы, истекающие завтра,
// вместе с email владельцев для уведомлений.
func (s *Storage) FindPlansExpiringTomorrow(ctx context.Context) ([]*models.UserPlanInfo, error) {
	const op = "storage.FindPlansExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.email, up.username, up.plan_name, up.remaining_days, up.expires_at
			  FROM user_plans up
			  JOIN profiles p ON up.username = p.username
			  WHERE up.status = $1
			    AND up.expires_at::DATE = CURRENT_DATE + INTERVAL '1 day'`
	rows, err := s.DB.QueryContext(ctx, query, models.UserPlanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserPlanInfo
	for rows.Next() {
		var info models.UserPlanInfo
		if err = rows.Scan(&info.Email, &info.Username, &info.PlanName,
			&info.RemainingDays, &info.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
