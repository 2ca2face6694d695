package models

import "time"

// Deposit представляет запись о депозите: как созданную потоком покупки
// плана, так и прямую заявку на пополнение со страницы депозита.
type Deposit struct {
	ID             int
	TxID           string    // Идентификатор транзакции, время+случайный суффикс
	Username       string    // Владелец депозита
	Gateway        string    // Идентификатор шлюза
	AmountUSD      float64   // Сумма в USD
	FeeUSD         float64   // Комиссия в USD
	PayableUSD     float64   // Итог к оплате в USD
	Status         string    // pending | confirmed | failed
	Address        string    // Адрес расчёта
	Currency       string    // Валюта расчёта
	ConversionRate float64   // Курс конвертации USD -> валюта расчёта
	CryptoAmount   float64   // Сумма в криптовалюте
	IdempotencyKey string    // Ключ попытки покупки; пустой для прямых депозитов
	CreatedAt      time.Time
}

// Статусы депозита. Переходы из pending выполняет администратор.
const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusFailed    = "failed"
)

// DummyDeposit используется для приёма заявки на пополнение из JSON-запроса.
type DummyDeposit struct {
	Gateway   string  `json:"gateway" validate:"required"`
	AmountUSD float64 `json:"amount_usd" validate:"required,gt=0"`
}
