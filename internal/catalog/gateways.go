package catalog

import "github.com/warrenposo/cloudmining-backend/internal/models"

var gateways = []models.Gateway{
	{
		ID: "btc", Currency: "BTC", Network: "bitcoin",
		MinUSD: 100, MaxUSD: 500000,
		PriceLookupKey:  "bitcoin",
		FallbackAddress: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
	},
	{
		ID: "eth", Currency: "ETH", Network: "ethereum",
		MinUSD: 50, MaxUSD: 500000,
		PriceLookupKey:  "ethereum",
		FallbackAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	{
		ID: "usdt-trc20", Currency: "USDT", Network: "trc20",
		MinUSD: 50, MaxUSD: 250000,
		FallbackAddress: "TN3W4H6rK2ce4vX9YnFQHwKENnHjoxb3m9",
	},
	{
		ID: "usdt-erc20", Currency: "USDT", Network: "erc20",
		MinUSD: 50, MaxUSD: 250000,
		FallbackAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	{
		ID: "usdc-erc20", Currency: "USDC", Network: "erc20",
		MinUSD: 50, MaxUSD: 250000,
		FallbackAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	{
		ID: "trx", Currency: "TRX", Network: "tron",
		MinUSD: 20, MaxUSD: 100000,
		PriceLookupKey:  "tron",
		FallbackAddress: "TN3W4H6rK2ce4vX9YnFQHwKENnHjoxb3m9",
	},
}

// Gateways возвращает копию таблицы платёжных шлюзов.
func Gateways() []models.Gateway {
	out := make([]models.Gateway, len(gateways))
	copy(out, gateways)
	return out
}

// GatewayByID ищет шлюз по идентификатору.
func GatewayByID(id string) (models.Gateway, bool) {
	for _, g := range gateways {
		if g.ID == id {
			return g, true
		}
	}
	return models.Gateway{}, false
}
