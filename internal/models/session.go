package models

import "time"

// PurchaseSession — эфемерное состояние потока покупки плана.
// Живёт только в кеше с коротким TTL и никогда не персистится:
// уход со страницы покупки равносилен отбрасыванию котировки.
type PurchaseSession struct {
	Username       string
	State          string    // form | preview | payment
	PlanID         string    // План из статического каталога
	Gateway        string    // Выбранный шлюз; пустой, пока не выбран
	ChargeUSD      float64   // Комиссия 2% от цены плана
	PayableUSD     float64   // Цена плана + комиссия
	ConversionRate float64   // Курс конвертации, заполняется на submit
	CryptoAmount   float64   // PayableUSD / ConversionRate
	IdempotencyKey string    // Ключ попытки покупки, стабилен внутри сессии
	CreatedAt      time.Time
}

// Состояния потока покупки.
const (
	PurchaseStateForm    = "form"
	PurchaseStatePreview = "preview"
	PurchaseStatePayment = "payment"
)

// InsufficientFunds описывает нехватку средств при старте покупки:
// требуемую сумму, текущий баланс и дефицит.
type InsufficientFunds struct {
	RequiredUSD float64 `json:"required_usd"`
	BalanceUSD  float64 `json:"balance_usd"`
	DeficitUSD  float64 `json:"deficit_usd"`
}

// PaymentDetails возвращается после подтверждения покупки: адрес расчёта,
// платёжный URI и суммы для экрана оплаты.
type PaymentDetails struct {
	TxID         string  `json:"tx_id"`
	Address      string  `json:"address"`
	PaymentURI   string  `json:"payment_uri"`
	Currency     string  `json:"currency"`
	PayableUSD   float64 `json:"payable_usd"`
	CryptoAmount string  `json:"crypto_amount"` // всегда 8 знаков после запятой
}

// DummyPurchaseStart используется для приёма начала покупки из JSON-запроса.
type DummyPurchaseStart struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// DummyPurchaseGateway используется для приёма выбора шлюза.
type DummyPurchaseGateway struct {
	Gateway string `json:"gateway" validate:"required"`
}
