package models

import "time"

// UserPlan связывает профиль с купленным планом и ведёт счётчики дней.
type UserPlan struct {
	ID            int
	Username      string
	CatalogPlanID int       // Ссылка на запись mining_plans
	PlanName      string
	TotalDays     int
	RemainingDays int
	Status        string    // pending | active | completed | expired
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Статусы пользовательского плана.
const (
	UserPlanStatusPending   = "pending"
	UserPlanStatusActive    = "active"
	UserPlanStatusCompleted = "completed"
	UserPlanStatusExpired   = "expired"
)

// UserPlanInfo дополняет план email владельца для уведомлений и админ-консоли.
type UserPlanInfo struct {
	Email         string
	Username      string
	PlanName      string
	RemainingDays int
	ExpiresAt     time.Time
}
