package models

import "time"

// Withdrawal представляет заявку на вывод средств. Баланс при создании
// не списывается: расчёт выполняется вне сервиса администратором.
type Withdrawal struct {
	ID        int
	Username  string
	AmountUSD float64
	Address   string // Свободный текст, без проверки контрольной суммы
	Currency  string
	Status    string // pending | paid | rejected
	CreatedAt time.Time
}

// Статусы заявки на вывод.
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusPaid     = "paid"
	WithdrawalStatusRejected = "rejected"
)

// DummyWithdrawal используется для приёма заявки на вывод из JSON-запроса.
type DummyWithdrawal struct {
	AmountUSD float64 `json:"amount_usd" validate:"required,gt=0"`
	Address   string  `json:"address" validate:"required"`
	Currency  string  `json:"currency" validate:"required"`
}
