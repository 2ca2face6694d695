// Package paymenturi строит платёжные URI для адресов расчёта по шлюзам.
//
// Для BTC и ETH используются нативные схемы кошельков, активы с расчётом в
// сети TRON получают схему-заглушку tron:, а ERC-20 активы переиспользуют
// схему Ethereum. Сумма всегда форматируется с 8 знаками после запятой
// независимо от принятой точности актива.
package paymenturi

import (
	"fmt"
	"strconv"
)

// Build возвращает платёжный URI для указанного сетевого лейбла шлюза,
// адреса расчёта и суммы в криптовалюте.
func Build(network, address string, cryptoAmount float64) string {
	amount := strconv.FormatFloat(cryptoAmount, 'f', 8, 64)
	switch network {
	case "bitcoin":
		return fmt.Sprintf("bitcoin:%s?amount=%s", address, amount)
	case "tron", "trc20":
		return fmt.Sprintf("tron:%s?amount=%s", address, amount)
	default:
		// ethereum и все ERC-20 активы
		return fmt.Sprintf("ethereum:%s?value=%s", address, amount)
	}
}

// FormatAmount возвращает сумму в криптовалюте в том же виде, в котором она
// попадает в URI и на экран оплаты.
func FormatAmount(cryptoAmount float64) string {
	return strconv.FormatFloat(cryptoAmount, 'f', 8, 64)
}
