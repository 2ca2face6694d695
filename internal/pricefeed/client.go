// Package pricefeed реализует клиента публичного индекса цен криптовалют.
//
// Клиент опрашивает индекс раз в интервал и держит последние удачные
// значения в памяти; любая ошибка фонового опроса (сеть, статус, парсинг,
// отсутствие поля) молча оставляет прежние значения. До первого удачного
// опроса действуют зашитые значения по умолчанию. Отдельный запрос курса
// для превью покупки, наоборот, возвращает ошибку вызывающему.
package pricefeed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/warrenposo/cloudmining-backend/internal/config"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
)

// Assets — фиксированный набор активов, которые опрашивает фоновый цикл.
var Assets = []string{"bitcoin", "ethereum", "tron"}

// Значения по умолчанию до первого удачного опроса индекса.
var defaultPrices = map[string]float64{
	"bitcoin":  65000,
	"ethereum": 3200,
	"tron":     0.12,
}

// Client опрашивает индекс цен и кеширует последние удачные значения.
type Client struct {
	baseURL      string
	pollInterval time.Duration
	httpClient   *http.Client
	log          *slog.Logger

	mu     sync.RWMutex
	prices map[string]float64
}

// New создает клиента индекса цен с настройками из конфига.
func New(cfg config.PriceFeed, log *slog.Logger) *Client {
	prices := make(map[string]float64, len(defaultPrices))
	for k, v := range defaultPrices {
		prices[k] = v
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		pollInterval: cfg.PollInterval,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		log:          log,
		prices:       prices,
	}
}

// FetchPrices запрашивает спотовые USD-цены фиксированного набора активов
// и при успехе заменяет кешированные значения. Ошибка возвращается для
// логирования, кеш при этом не трогается.
func (c *Client) FetchPrices(ctx context.Context) error {
	const op = "pricefeed.FetchPrices"

	body, err := c.get(ctx, strings.Join(Assets, ","))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	fresh := make(map[string]float64, len(Assets))
	for _, asset := range Assets {
		v := gjson.GetBytes(body, asset+".usd")
		if !v.Exists() || v.Float() <= 0 {
			return fmt.Errorf("%s: missing price for %s", op, asset)
		}
		fresh[asset] = v.Float()
	}

	c.mu.Lock()
	for asset, price := range fresh {
		c.prices[asset] = price
	}
	c.mu.Unlock()
	return nil
}

// Rate запрашивает спотовую USD-цену одного актива для конвертации на
// превью покупки. В отличие от фонового опроса ошибка здесь не глотается:
// без живого курса превью не продвигается.
func (c *Client) Rate(ctx context.Context, asset string) (float64, error) {
	const op = "pricefeed.Rate"

	body, err := c.get(ctx, asset)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	v := gjson.GetBytes(body, asset+".usd")
	if !v.Exists() || v.Float() <= 0 {
		return 0, fmt.Errorf("%s: missing price for %s", op, asset)
	}

	c.mu.Lock()
	c.prices[asset] = v.Float()
	c.mu.Unlock()
	return v.Float(), nil
}

// Cached возвращает последнюю известную USD-цену актива.
func (c *Client) Cached(asset string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.prices[asset]
	return price, ok
}

// Snapshot возвращает копию всех кешированных цен для каталога.
func (c *Client) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

// Run опрашивает индекс сразу и затем раз в интервал до отмены контекста.
// Ошибки опроса только логируются, сервис продолжает работать на
// устаревших значениях.
func (c *Client) Run(ctx context.Context) {
	if err := c.FetchPrices(ctx); err != nil {
		c.log.Warn("initial price fetch failed, using defaults", sl.Err(err))
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.FetchPrices(ctx); err != nil {
				c.log.Warn("price refresh failed, keeping last values", sl.Err(err))
			}
		}
	}
}

func (c *Client) get(ctx context.Context, ids string) ([]byte, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, ids)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
