package models

// Gateway описывает платёжный шлюз: валюту расчёта, сетевой лейбл,
// границы суммы в USD и резервный адрес расчёта.
type Gateway struct {
	ID              string  // Идентификатор шлюза, например usdt-trc20
	Currency        string  // Валюта расчёта: BTC, ETH, USDT, USDC, TRX
	Network         string  // Сетевой лейбл: bitcoin, ethereum, tron, erc20, trc20
	MinUSD          float64 // Минимальная сумма в USD
	MaxUSD          float64 // Максимальная сумма в USD
	PriceLookupKey  string  // Ключ актива в индексе цен; пустой для стейблкоинов
	FallbackAddress string  // Резервный адрес расчёта, если в базе нет активного
}

// Stable сообщает, рассчитывается ли шлюз в стейблкоине.
// Для таких шлюзов курс конвертации всегда равен 1.
func (g Gateway) Stable() bool {
	return g.PriceLookupKey == ""
}
