package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {
        "currency": "KRW",
        "symbol": "005930.KS",
        "longName": "Samsung Electronics Co., Ltd.",
        "regularMarketPrice": 72500,
        "regularMarketTime": 1717400000,
        "chartPreviousClose": 71000
      },
      "timestamp": [1717027200, 1717113600, 1717372800, 1717459200],
      "indicators": {"quote": [{"close": [70000, null, 71000, 72500]}]}
    }],
    "error": null
  }
}`

func newTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestYahooClient_Quote(t *testing.T) {
	server := newTestServer(t, chartFixture)
	client := NewYahooClient(server.URL, 5*time.Second)

	q, err := client.Quote(context.Background(), "005930.KS")
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	if q.Price != 72500 {
		t.Errorf("Price = %v, want 72500", q.Price)
	}
	if q.Currency != "KRW" {
		t.Errorf("Currency = %q, want KRW", q.Currency)
	}
	if q.Name != "Samsung Electronics Co., Ltd." {
		t.Errorf("Name = %q", q.Name)
	}
	want := (72500.0 - 71000.0) / 71000.0 * 100
	if diff := q.ChangePercent - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ChangePercent = %v, want %v", q.ChangePercent, want)
	}
}

func TestYahooClient_History(t *testing.T) {
	server := newTestServer(t, chartFixture)
	client := NewYahooClient(server.URL, 5*time.Second)

	start := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)
	points, err := client.History(context.Background(), "005930.KS", start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3 (null close skipped)", len(points))
	}
	for _, p := range points {
		if p.Date.Hour() != 0 || p.Date.Minute() != 0 {
			t.Errorf("date %v not truncated to midnight", p.Date)
		}
	}
	if points[2].Close != 72500 {
		t.Errorf("last close = %v, want 72500", points[2].Close)
	}
}

func TestYahooClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "not found",
			body:    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
			wantErr: apperrors.ErrSymbolNotFound,
		},
		{
			name:    "empty result",
			body:    `{"chart":{"result":[],"error":null}}`,
			wantErr: apperrors.ErrSymbolNotFound,
		},
		{
			name:    "no prices",
			body:    `{"chart":{"result":[{"meta":{"currency":"USD"},"timestamp":[1],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`,
			wantErr: apperrors.ErrNoPriceData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.body)
			client := NewYahooClient(server.URL, time.Second)

			_, err := client.Quote(context.Background(), "NOPE")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Quote() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTicker(t *testing.T) {
	tests := []struct {
		symbol, market, want string
	}{
		{"005930", "KR", "005930.KS"},
		{"005930.KS", "KR", "005930.KS"},
		{"035720", "kosdaq", "035720.KQ"},
		{" aapl ", "US", "AAPL"},
		{"VOO", "", "VOO"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol+"/"+tt.market, func(t *testing.T) {
			if got := Ticker(tt.symbol, tt.market); got != tt.want {
				t.Errorf("Ticker(%q, %q) = %q, want %q", tt.symbol, tt.market, got, tt.want)
			}
		})
	}
}

type countingClient struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingClient) Quote(_ context.Context, symbol string) (model.Quote, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	if symbol == "FAIL" {
		return model.Quote{}, fmt.Errorf("upstream error")
	}
	return model.Quote{Symbol: symbol, Price: 1}, nil
}

func (c *countingClient) History(_ context.Context, symbol string, _, _ time.Time) ([]model.PricePoint, error) {
	if symbol == "FAIL" {
		return nil, apperrors.ErrNoPriceData
	}
	return []model.PricePoint{{Close: 1}}, nil
}

func TestFetchQuotes_BoundedAndPartial(t *testing.T) {
	client := &countingClient{}
	tickers := []string{"A", "B", "C", "D", "E", "F", "G", "H", "FAIL", "A"}

	quotes := FetchQuotes(context.Background(), client, tickers)

	if len(quotes) != 8 {
		t.Errorf("len(quotes) = %d, want 8", len(quotes))
	}
	if _, ok := quotes["FAIL"]; ok {
		t.Error("failed ticker should be absent")
	}
	if peak := client.peak.Load(); peak > maxConcurrentFetches {
		t.Errorf("peak concurrency = %d, want <= %d", peak, maxConcurrentFetches)
	}
}

func TestFetchHistories(t *testing.T) {
	histories := FetchHistories(context.Background(), &countingClient{}, []string{"A", "FAIL"}, time.Time{}, time.Time{})

	if len(histories) != 1 || len(histories["A"]) != 1 {
		t.Errorf("FetchHistories() = %v", histories)
	}
}
