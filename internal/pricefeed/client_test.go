package pricefeed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warrenposo/cloudmining-backend/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.PriceFeed{
		BaseURL:        srv.URL,
		PollInterval:   time.Minute,
		RequestTimeout: 2 * time.Second,
	}, logger)
}

func TestFetchPrices_UpdatesCache(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum,tron", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":51000},"ethereum":{"usd":3000},"tron":{"usd":0.11}}`))
	})

	err := client.FetchPrices(context.Background())
	require.NoError(t, err)

	price, ok := client.Cached("bitcoin")
	require.True(t, ok)
	assert.InDelta(t, 51000, price, 0.0001)

	snapshot := client.Snapshot()
	assert.InDelta(t, 3000, snapshot["ethereum"], 0.0001)
	assert.InDelta(t, 0.11, snapshot["tron"], 0.0001)
}

func TestFetchPrices_KeepsDefaultsOnMissingAsset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":51000}}`))
	})

	err := client.FetchPrices(context.Background())
	require.Error(t, err)

	// Кеш не тронут: действуют зашитые значения по умолчанию.
	price, ok := client.Cached("bitcoin")
	require.True(t, ok)
	assert.InDelta(t, 65000, price, 0.0001)
}

func TestFetchPrices_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := client.FetchPrices(context.Background())
	require.Error(t, err)
}

func TestRate_SingleAsset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "litecoin", r.URL.Query().Get("ids"))
		_, _ = w.Write([]byte(`{"litecoin":{"usd":85.5}}`))
	})

	rate, err := client.Rate(context.Background(), "litecoin")
	require.NoError(t, err)
	assert.InDelta(t, 85.5, rate, 0.0001)

	// Удачный запрос пополняет кеш.
	cached, ok := client.Cached("litecoin")
	require.True(t, ok)
	assert.InDelta(t, 85.5, cached, 0.0001)
}

func TestRate_MissingPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Rate(context.Background(), "litecoin")
	require.Error(t, err)
}

func TestRate_ZeroPriceRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"litecoin":{"usd":0}}`))
	})

	_, err := client.Rate(context.Background(), "litecoin")
	require.Error(t, err)
}
