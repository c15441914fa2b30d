// Package marketdata fetches quotes and daily price history.
package marketdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// Client is the market-data source used by the services.
type Client interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	History(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
}

// maxConcurrentFetches bounds the fan-out against the upstream API.
const maxConcurrentFetches = 4

// marketSuffix maps a market code to the Yahoo exchange suffix.
var marketSuffix = map[string]string{
	"KR":     ".KS",
	"KOSPI":  ".KS",
	"KOSDAQ": ".KQ",
	"JP":     ".T",
	"HK":     ".HK",
	"UK":     ".L",
}

// Ticker returns the upstream ticker for a symbol listed on market.
// Symbols that already carry an exchange suffix are returned unchanged.
func Ticker(symbol, market string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + marketSuffix[strings.ToUpper(market)]
}

// FetchQuotes fetches quotes for tickers concurrently. A failed ticker is
// logged and left out of the result; it never fails the whole call.
func FetchQuotes(ctx context.Context, client Client, tickers []string) map[string]model.Quote {
	var mu sync.Mutex
	quotes := make(map[string]model.Quote, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, ticker := range unique(tickers) {
		g.Go(func() error {
			q, err := client.Quote(gctx, ticker)
			if err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Msg("quote unavailable")
				return nil
			}
			mu.Lock()
			quotes[ticker] = q
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return quotes
}

// FetchHistories fetches daily closes for tickers concurrently. Tickers without
// data are logged and left out of the result.
func FetchHistories(ctx context.Context, client Client, tickers []string, start, end time.Time) map[string][]model.PricePoint {
	var mu sync.Mutex
	histories := make(map[string][]model.PricePoint, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, ticker := range unique(tickers) {
		g.Go(func() error {
			points, err := client.History(gctx, ticker, start, end)
			if err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Msg("price history unavailable")
				return nil
			}
			mu.Lock()
			histories[ticker] = points
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return histories
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
