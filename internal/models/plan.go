package models

// Plan описывает тарифный план майнинга из статического каталога.
// Счётчики Available и Sold — маркетинговые числа для прогресс-бара,
// ни один путь записи их не изменяет.
type Plan struct {
	ID           string  // Идентификатор плана в каталоге
	Name         string  // Отображаемое имя
	Family       string  // Семейство валюты: BTC или LTC
	PriceUSD     float64 // Цена плана в USD
	DurationDays int     // Длительность контракта в днях
	DailyYield   float64 // Дневная доходность в монете семейства
	MonthlyYield float64 // Месячная доходность в монете семейства
	TotalYield   float64 // Суммарная доходность в монете семейства
	DailyUSD     float64 // Дневная доходность в USD-эквиваленте
	TotalUSD     float64 // Суммарная доходность в USD-эквиваленте
	Available    int     // Маркетинговое число доступных контрактов
	Sold         int     // Маркетинговое число проданных контрактов
}

// CatalogPlan представляет запись удалённого каталога mining_plans,
// создаваемую идемпотентно по паре name+family при подтверждении покупки.
type CatalogPlan struct {
	ID           int
	Name         string
	Family       string
	PriceUSD     float64
	DurationDays int
}
