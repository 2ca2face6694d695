// Package catalog содержит статический каталог тарифных планов майнинга и
// таблицу платёжных шлюзов. Каталог рукописный и неизменяемый во время
// работы: никакие пути записи его не обновляют, проценты продаж считаются
// от статических чисел и носят оформительский характер.
package catalog

import "github.com/warrenposo/cloudmining-backend/internal/models"

// Семейства валют каталога.
const (
	FamilyBTC = "BTC"
	FamilyLTC = "LTC"
)

var plans = []models.Plan{
	{
		ID: "btc-starter", Name: "BTC Starter", Family: FamilyBTC,
		PriceUSD: 100, DurationDays: 30,
		DailyYield: 0.00006, MonthlyYield: 0.0018, TotalYield: 0.0018,
		DailyUSD: 3.90, TotalUSD: 117.00,
		Available: 500, Sold: 342,
	},
	{
		ID: "btc-standard", Name: "BTC Standard", Family: FamilyBTC,
		PriceUSD: 200, DurationDays: 45,
		DailyYield: 0.00013, MonthlyYield: 0.0039, TotalYield: 0.00585,
		DailyUSD: 8.45, TotalUSD: 380.25,
		Available: 400, Sold: 265,
	},
	{
		ID: "btc-advanced", Name: "BTC Advanced", Family: FamilyBTC,
		PriceUSD: 500, DurationDays: 60,
		DailyYield: 0.00035, MonthlyYield: 0.0105, TotalYield: 0.021,
		DailyUSD: 22.75, TotalUSD: 1365.00,
		Available: 250, Sold: 198,
	},
	{
		ID: "btc-pro", Name: "BTC Pro", Family: FamilyBTC,
		PriceUSD: 1000, DurationDays: 90,
		DailyYield: 0.00075, MonthlyYield: 0.0225, TotalYield: 0.0675,
		DailyUSD: 48.75, TotalUSD: 4387.50,
		Available: 100, Sold: 61,
	},
	{
		ID: "ltc-starter", Name: "LTC Starter", Family: FamilyLTC,
		PriceUSD: 50, DurationDays: 30,
		DailyYield: 0.025, MonthlyYield: 0.75, TotalYield: 0.75,
		DailyUSD: 2.10, TotalUSD: 63.00,
		Available: 600, Sold: 410,
	},
	{
		ID: "ltc-standard", Name: "LTC Standard", Family: FamilyLTC,
		PriceUSD: 150, DurationDays: 45,
		DailyYield: 0.08, MonthlyYield: 2.4, TotalYield: 3.6,
		DailyUSD: 6.70, TotalUSD: 301.50,
		Available: 350, Sold: 204,
	},
	{
		ID: "ltc-pro", Name: "LTC Pro", Family: FamilyLTC,
		PriceUSD: 400, DurationDays: 60,
		DailyYield: 0.23, MonthlyYield: 6.9, TotalYield: 13.8,
		DailyUSD: 19.30, TotalUSD: 1158.00,
		Available: 150, Sold: 97,
	},
}

// Plans возвращает копию полного списка планов каталога.
func Plans() []models.Plan {
	out := make([]models.Plan, len(plans))
	copy(out, plans)
	return out
}

// PlansByFamily возвращает планы указанного семейства валют.
func PlansByFamily(family string) []models.Plan {
	var out []models.Plan
	for _, p := range plans {
		if p.Family == family {
			out = append(out, p)
		}
	}
	return out
}

// PlanByID ищет план по идентификатору.
func PlanByID(id string) (models.Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// SoldPercent возвращает процент проданных контрактов для прогресс-бара.
// Число декоративное: каталог статический и продажи его не уменьшают.
func SoldPercent(p models.Plan) float64 {
	if p.Available <= 0 {
		return 0
	}
	pct := float64(p.Sold) / float64(p.Available) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
