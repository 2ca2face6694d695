// Package scheduler содержит ежедневное обслуживание купленных планов:
// активацию оплаченных, списание дней у активных, просрочку неоплаченных
// и рассылку уведомлений об истекающих планах.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// PlanRepository определяет методы хранилища для обслуживания планов.
type PlanRepository interface {
	ActivatePendingPlans(ctx context.Context) (int, error)
	DecrementActivePlans(ctx context.Context) (int, error)
	ExpireOverduePendingPlans(ctx context.Context) (int, error)
	FindPlansExpiringTomorrow(ctx context.Context) ([]*models.UserPlanInfo, error)
}

// Publisher публикует уведомления об истекающих планах.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service выполняет ежедневный проход обслуживания планов.
type Service struct {
	repo      PlanRepository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый Service планировщика.
func New(repo PlanRepository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Run запускает проход сразу и затем по тикеру, пока контекст жив.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.RunDaily(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunDaily(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunDaily выполняет один проход обслуживания. Порядок шагов важен:
// сначала активируются оплаченные планы, затем у активных списывается
// день, затем просроченные неоплаченные помечаются expired.
func (s *Service) RunDaily(ctx context.Context) {
	s.log.Info("starting daily plan maintenance")

	activated, err := s.repo.ActivatePendingPlans(ctx)
	if err != nil {
		s.log.Error("failed to activate pending plans", sl.Err(err))
	} else if activated > 0 {
		s.log.Info("activated plans", "count", activated)
	}

	decremented, err := s.repo.DecrementActivePlans(ctx)
	if err != nil {
		s.log.Error("failed to decrement active plans", sl.Err(err))
	} else if decremented > 0 {
		s.log.Info("decremented plans", "count", decremented)
	}

	expired, err := s.repo.ExpireOverduePendingPlans(ctx)
	if err != nil {
		s.log.Error("failed to expire overdue plans", sl.Err(err))
	} else if expired > 0 {
		s.log.Info("expired overdue plans", "count", expired)
	}

	s.notifyExpiring(ctx)
}

func (s *Service) notifyExpiring(ctx context.Context) {
	plans, err := s.repo.FindPlansExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring plans", sl.Err(err))
		return
	}
	if len(plans) == 0 {
		s.log.Info("no expiring plans found")
		return
	}
	s.log.Info("found expiring plans", "count", len(plans))
	for _, plan := range plans {
		if err := s.publisher.Publish("plan_expiring", plan); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
