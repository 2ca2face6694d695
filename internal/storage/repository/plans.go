package repository

import (
	"context"
	"fmt"

	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// GetOrCreateCatalogPlan идемпотентно находит или создаёт запись каталога
// mining_plans по паре name+family и возвращает её ID. Повторный вызов для
// той же пары всегда возвращает существующий ID, дубликаты не создаются.
func (s *Storage) GetOrCreateCatalogPlan(ctx context.Context, plan models.CatalogPlan) (int, error) {
	const op = "storage.GetOrCreateCatalogPlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO mining_plans (name, family, price_usd, duration_days)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (name, family) DO UPDATE SET price_usd = EXCLUDED.price_usd
			  RETURNING id`
	var id int
	err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Family, plan.PriceUSD, plan.DurationDays).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListCatalogPlans возвращает записи удалённого каталога.
func (s *Storage) ListCatalogPlans(ctx context.Context) ([]*models.CatalogPlan, error) {
	const op = "storage.ListCatalogPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, family, price_usd, duration_days
			  FROM mining_plans
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.CatalogPlan
	for rows.Next() {
		var p models.CatalogPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Family, &p.PriceUSD, &p.DurationDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
