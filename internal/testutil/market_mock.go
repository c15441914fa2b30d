package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// MockMarketClient is a mock implementation of marketdata.Client for testing.
// It returns predefined quotes and histories keyed by ticker instead of
// calling the upstream API. It is safe for concurrent use.
type MockMarketClient struct {
	mu        sync.Mutex
	quotes    map[string]model.Quote
	histories map[string][]model.PricePoint
	err       error

	// QuoteCount tracks how many times Quote was called
	QuoteCount int
	// HistoryCount tracks how many times History was called
	HistoryCount int
}

// NewMockMarketClient creates a mock with no data. Unknown tickers return ErrSymbolNotFound.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		quotes:    map[string]model.Quote{},
		histories: map[string][]model.PricePoint{},
	}
}

// WithQuote registers the latest price of ticker.
func (m *MockMarketClient) WithQuote(ticker string, price float64, currency string) *MockMarketClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[ticker] = model.Quote{
		Symbol:        ticker,
		Currency:      currency,
		Price:         price,
		PreviousClose: price,
		AsOf:          time.Now().UTC(),
	}
	return m
}

// WithHistory registers daily closes of ticker ending yesterday, oldest first.
func (m *MockMarketClient) WithHistory(ticker string, closes ...float64) *MockMarketClient {
	y, mo, d := time.Now().UTC().Date()
	last := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: last.AddDate(0, 0, i-len(closes)+1), Close: c}
	}
	return m.WithHistoryPoints(ticker, points)
}

// WithHistoryPoints registers explicit daily closes of ticker.
func (m *MockMarketClient) WithHistoryPoints(ticker string, points []model.PricePoint) *MockMarketClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[ticker] = points
	return m
}

// WithError makes every call fail with err.
func (m *MockMarketClient) WithError(err error) *MockMarketClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Quote returns the registered quote of symbol.
func (m *MockMarketClient) Quote(_ context.Context, symbol string) (model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteCount++

	if m.err != nil {
		return model.Quote{}, m.err
	}
	q, ok := m.quotes[symbol]
	if !ok {
		return model.Quote{}, apperrors.ErrSymbolNotFound
	}
	return q, nil
}

// History returns the registered closes of symbol between start and end.
func (m *MockMarketClient) History(_ context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryCount++

	if m.err != nil {
		return nil, m.err
	}
	points, ok := m.histories[symbol]
	if !ok {
		return nil, apperrors.ErrSymbolNotFound
	}

	out := []model.PricePoint{}
	for _, p := range points {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.ErrNoPriceData
	}
	return out, nil
}
