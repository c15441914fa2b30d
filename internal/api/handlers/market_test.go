package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func setupMarketHandler(t *testing.T) *MarketHandler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient().
		WithQuote("005930.KS", 70000, "KRW").
		WithHistory("VOO", 400, 401, 402)
	return NewMarketHandler(testutil.NewTestMarketService(t, db, market))
}

func TestMarketHandler_ExchangeRate(t *testing.T) {
	handler := setupMarketHandler(t)

	t.Run("returns the rate", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/exchange-rate", map[string]string{"from": "usd", "to": "krw"})
		w := httptest.NewRecorder()
		handler.ExchangeRate(w, req)

		assertStatus(t, w, http.StatusOK)
		if env := decode[model.ExchangeRate](t, w); env.Data.Rate != 1300 {
			t.Errorf("Expected 1300, got %v", env.Data.Rate)
		}
	})

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"missing to", map[string]string{"from": "USD"}},
		{"missing from", map[string]string{"to": "USD"}},
		{"malformed currency", map[string]string{"from": "US", "to": "KRW"}},
		{"unsupported currency", map[string]string{"from": "XXX", "to": "KRW"}},
	}
	for _, tt := range tests {
		t.Run("returns 400 for "+tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ExchangeRate(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/exchange-rate", tt.params))
			assertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestMarketHandler_Convert(t *testing.T) {
	handler := setupMarketHandler(t)

	t.Run("converts an amount", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/exchange-rate/convert",
			map[string]string{"amount": "100", "from": "EUR", "to": "KRW"})
		w := httptest.NewRecorder()
		handler.Convert(w, req)

		assertStatus(t, w, http.StatusOK)
		if env := decode[model.Conversion](t, w); math.Abs(env.Data.Converted-162500) > 1e-6 {
			t.Errorf("Expected 162500, got %v", env.Data.Converted)
		}
	})

	t.Run("returns 400 for a non-numeric amount", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/exchange-rate/convert",
			map[string]string{"amount": "lots", "from": "EUR", "to": "KRW"})
		w := httptest.NewRecorder()
		handler.Convert(w, req)

		assertStatus(t, w, http.StatusBadRequest)
	})
}

func TestMarketHandler_Quote(t *testing.T) {
	handler := setupMarketHandler(t)

	t.Run("maps the market to an exchange suffix", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/market/quote", map[string]string{"symbol": "005930", "market": "kr"})
		w := httptest.NewRecorder()
		handler.Quote(w, req)

		assertStatus(t, w, http.StatusOK)
		if env := decode[model.Quote](t, w); env.Data.Price != 70000 {
			t.Errorf("Expected 70000, got %v", env.Data.Price)
		}
	})

	t.Run("returns 400 without a symbol", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Quote(w, httptest.NewRequest(http.MethodGet, "/api/market/quote", nil))
		assertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("returns 404 for an unknown symbol", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/market/quote", map[string]string{"symbol": "NOPE"})
		w := httptest.NewRecorder()
		handler.Quote(w, req)
		assertStatus(t, w, http.StatusNotFound)
	})
}

func TestMarketHandler_History(t *testing.T) {
	handler := setupMarketHandler(t)

	req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/market/history", map[string]string{"symbol": "VOO", "days": "10"})
	w := httptest.NewRecorder()
	handler.History(w, req)

	assertStatus(t, w, http.StatusOK)
	if env := decode[[]model.PricePoint](t, w); len(env.Data) != 3 {
		t.Errorf("Expected 3 closes, got %d", len(env.Data))
	}

	w = httptest.NewRecorder()
	handler.History(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/", map[string]string{"symbol": "VOO", "days": "0"}))
	assertStatus(t, w, http.StatusBadRequest)
}
