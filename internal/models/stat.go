package models

import "time"

// MiningStat хранит показатели майнинга профиля для дашборда.
type MiningStat struct {
	ID          int
	Username    string
	Hashrate    float64 // TH/s
	EarningsUSD float64
	UpdatedAt   time.Time
}

// MiningStatInfo дополняет показатели email владельца для админ-консоли.
type MiningStatInfo struct {
	MiningStat
	Email string
}
