package models

// DepositConfirmedNotification — сообщение очереди о зачислении депозита.
type DepositConfirmedNotification struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	TxID      string  `json:"tx_id"`
	AmountUSD float64 `json:"amount_usd"`
}
