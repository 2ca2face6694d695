package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// ErrProfileNotFound возвращается, когда профиль отсутствует в базе.
var ErrProfileNotFound = errors.New("profile not found")

// CreateProfile сохраняет новый профиль и возвращает его UID.
func (s *Storage) CreateProfile(ctx context.Context, profile models.Profile) (string, error) {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO profiles (email, username, password_hash, role, referral_code, balance)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		profile.Email, profile.Username, profile.PasswordHash, profile.Role,
		profile.ReferralCode, profile.Balance).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetProfileByUsername возвращает профиль по username.
func (s *Storage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	const op = "storage.GetProfileByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, referral_code, balance, created_at
			  FROM profiles
			  WHERE username = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, username)
	if err := row.Scan(&p.UID, &p.Email, &p.Username, &p.PasswordHash,
		&p.Role, &p.ReferralCode, &p.Balance, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetProfile возвращает профиль по его UID.
func (s *Storage) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, referral_code, balance, created_at
			  FROM profiles
			  WHERE uid = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, uid)
	if err := row.Scan(&p.UID, &p.Email, &p.Username, &p.PasswordHash,
		&p.Role, &p.ReferralCode, &p.Balance, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetBalance возвращает текущий баланс профиля в USD.
func (s *Storage) GetBalance(ctx context.Context, username string) (float64, error) {
	const op = "storage.GetBalance"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT balance FROM profiles WHERE username = $1`
	var balance float64
	if err := s.DB.QueryRowContext(ctx, query, username).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// ListProfiles возвращает все профили для админ-консоли с пагинацией.
func (s *Storage) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	const op = "storage.ListProfiles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, referral_code, balance, created_at
			  FROM profiles
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UID, &p.Email, &p.Username, &p.PasswordHash,
			&p.Role, &p.ReferralCode, &p.Balance, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
