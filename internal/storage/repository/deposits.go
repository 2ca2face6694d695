package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// CreateDeposit вставляет запись депозита со статусом pending и возвращает её ID.
func (s *Storage) CreateDeposit(ctx context.Context, deposit models.Deposit) (int, error) {
	const op = "storage.CreateDeposit"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO deposits (tx_id, username, gateway, amount_usd, fee_usd, payable_usd,
			      status, address, currency, conversion_rate, crypto_amount, idempotency_key)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		deposit.TxID, deposit.Username, deposit.Gateway, deposit.AmountUSD, deposit.FeeUSD,
		deposit.PayableUSD, deposit.Status, deposit.Address, deposit.Currency,
		deposit.ConversionRate, deposit.CryptoAmount, deposit.IdempotencyKey).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindDepositByIdempotencyKey возвращает депозит попытки покупки по её ключу.
// Второй результат false означает, что попытка ещё не создавала депозит.
func (s *Storage) FindDepositByIdempotencyKey(ctx context.Context, key string) (*models.Deposit, bool, error) {
	const op = "storage.FindDepositByIdempotencyKey"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tx_id, username, gateway, amount_usd, fee_usd, payable_usd,
			      status, address, currency, conversion_rate, crypto_amount,
			      COALESCE(idempotency_key, ''), created_at
			  FROM deposits
			  WHERE idempotency_key = $1`
	var d models.Deposit
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&d.ID, &d.TxID, &d.Username,
		&d.Gateway, &d.AmountUSD, &d.FeeUSD, &d.PayableUSD, &d.Status, &d.Address,
		&d.Currency, &d.ConversionRate, &d.CryptoAmount, &d.IdempotencyKey, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &d, true, nil
}

// UpdateDepositStatus переводит депозит в новый статус и возвращает
// количество изменённых строк.
func (s *Storage) UpdateDepositStatus(ctx context.Context, txID, status string) (int, error) {
	const op = "storage.UpdateDepositStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE deposits SET status = $1 WHERE tx_id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, txID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ErrDepositNotPending возвращается при попытке подтвердить депозит,
// который не находится в статусе pending.
var ErrDepositNotPending = errors.New("deposit is not pending")

// ConfirmDeposit переводит pending-депозит в confirmed и зачисляет payable
// на баланс владельца одной транзакцией. Возвращает владельца и сумму
// зачисления.
func (s *Storage) ConfirmDeposit(ctx context.Context, txID string) (string, float64, error) {
	const op = "storage.ConfirmDeposit"
	select {
	case <-ctx.Done():
		return "", 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var username string
	var payable float64
	query := `UPDATE deposits SET status = $1
			  WHERE tx_id = $2 AND status = $3
			  RETURNING username, payable_usd`
	err = tx.QueryRowContext(ctx, query,
		models.DepositStatusConfirmed, txID, models.DepositStatusPending).Scan(&username, &payable)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, fmt.Errorf("%s: %s: %w", op, txID, ErrDepositNotPending)
	}
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	query = `UPDATE profiles SET balance = balance + $1 WHERE username = $2`
	if _, err = tx.ExecContext(ctx, query, payable, username); err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	return username, payable, nil
}

// ListDeposits возвращает депозиты пользователя с пагинацией.
func (s *Storage) ListDeposits(ctx context.Context, username string, limit, offset int) ([]*models.Deposit, error) {
	const op = "storage.ListDeposits"
	return s.listDeposits(ctx, op,
		`SELECT id, tx_id, username, gateway, amount_usd, fee_usd, payable_usd,
		     status, address, currency, conversion_rate, crypto_amount,
		     COALESCE(idempotency_key, ''), created_at
		 FROM deposits
		 WHERE username = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, username, limit, offset)
}

// ListAllDeposits возвращает все депозиты для админ-консоли с пагинацией.
func (s *Storage) ListAllDeposits(ctx context.Context, limit, offset int) ([]*models.Deposit, error) {
	const op = "storage.ListAllDeposits"
	return s.listDeposits(ctx, op,
		`SELECT id, tx_id, username, gateway, amount_usd, fee_usd, payable_usd,
		     status, address, currency, conversion_rate, crypto_amount,
		     COALESCE(idempotency_key, ''), created_at
		 FROM deposits
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
}

func (s *Storage) listDeposits(ctx context.Context, op, query string, args ...any) ([]*models.Deposit, error) {
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

	var result []*models.Deposit
	for rows.Next() {
		var d models.Deposit
		if err := rows.Scan(&d.ID, &d.TxID, &d.Username, &d.Gateway, &d.AmountUSD,
			&d.FeeUSD, &d.PayableUSD, &d.Status, &d.Address, &d.Currency,
			&d.ConversionRate, &d.CryptoAmount, &d.IdempotencyKey, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
