package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p60/intake-bot/internal/catalog"
)

var rateCoins = []catalog.Option{
	{Key: "bitcoin", Label: "BTC"},
	{Key: "tether", Label: "USDT"},
}

func rateProvider(t *testing.T, hits *int, mu *sync.Mutex) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*hits++
		mu.Unlock()
		assert.Equal(t, "bitcoin,tether", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, `{
			"bitcoin": {"usd": 96412.35, "last_updated_at": 1756555200},
			"tether": {"usd": 0.9998, "last_updated_at": 1756555200}
		}`)
	}))
}

func TestRatesText_RendersQuotes(t *testing.T) {
	var hits int
	var mu sync.Mutex
	provider := rateProvider(t, &hits, &mu)
	defer provider.Close()

	service := NewRatesService(provider.URL, "usd", rateCoins, time.Minute)
	text := service.RatesText(context.Background())

	assert.Contains(t, text, "Current rates (USD)")
	assert.Contains(t, text, "BTC: 96 412.35")
	assert.Contains(t, text, "USDT: 0.999800")
	assert.Contains(t, text, "Updated: 12:00 UTC")
}

func TestRatesText_CacheAvoidsRefetch(t *testing.T) {
	var hits int
	var mu sync.Mutex
	provider := rateProvider(t, &hits, &mu)
	defer provider.Close()

	service := NewRatesService(provider.URL, "usd", rateCoins, time.Minute)
	service.RatesText(context.Background())
	service.RatesText(context.Background())

	mu.Lock()
	assert.Equal(t, 1, hits)
	mu.Unlock()
}

func TestRatesText_StaleCacheOnProviderFailure(t *testing.T) {
	var failing bool
	var failMu sync.Mutex
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		failMu.Lock()
		broken := failing
		failMu.Unlock()
		if broken {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"bitcoin": {"usd": 96412.35, "last_updated_at": 1756555200}}`)
	}))
	defer provider.Close()

	service := NewRatesService(provider.URL, "usd", rateCoins, time.Nanosecond)

	first := service.RatesText(context.Background())
	require.Contains(t, first, "BTC")

	failMu.Lock()
	failing = true
	failMu.Unlock()

	// The cache has expired, the refresh fails, the old quotes still render.
	second := service.RatesText(context.Background())
	assert.Contains(t, second, "BTC: 96 412.35")
}

func TestRatesText_UnavailableWithoutCache(t *testing.T) {
	service := NewRatesService("http://127.0.0.1:1/simple/price", "usd", rateCoins, time.Minute)
	text := service.RatesText(context.Background())
	assert.Equal(t, "Current rates: temporarily unavailable.", text)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "96 412.35", formatPrice(96412.35))
	assert.Equal(t, "1 000.00", formatPrice(1000))
	assert.Equal(t, "245.10", formatPrice(245.1))
	assert.Equal(t, "1.0002", formatPrice(1.0002))
	assert.Equal(t, "0.999800", formatPrice(0.9998))
}
