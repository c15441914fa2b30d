package service

import (
	"context"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/marketdata"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// MarketService exposes quotes, price history and exchange rates.
type MarketService struct {
	market    marketdata.Client
	converter *fx.Converter
}

// NewMarketService creates a new MarketService.
func NewMarketService(market marketdata.Client, converter *fx.Converter) *MarketService {
	return &MarketService{
		market:    market,
		converter: converter,
	}
}

// GetQuote returns the latest quote of symbol on market.
func (s *MarketService) GetQuote(ctx context.Context, symbol, market string) (model.Quote, error) {
	return s.market.Quote(ctx, marketdata.Ticker(symbol, market))
}

// GetHistory returns the daily closes of the last days calendar days.
func (s *MarketService) GetHistory(ctx context.Context, symbol, market string, days int) ([]model.PricePoint, error) {
	end := time.Now().UTC()
	start := analytics.Truncate(end.AddDate(0, 0, -days))
	return s.market.History(ctx, marketdata.Ticker(symbol, market), start, end)
}

// GetExchangeRate returns the rate for 1 from in to.
func (s *MarketService) GetExchangeRate(ctx context.Context, from, to string) (model.ExchangeRate, error) {
	return s.converter.Rate(ctx, strings.ToUpper(from), strings.ToUpper(to))
}

// Convert converts amount between currencies.
func (s *MarketService) Convert(ctx context.Context, amount float64, from, to string) (model.Conversion, error) {
	return s.converter.Convert(ctx, amount, strings.ToUpper(from), strings.ToUpper(to))
}
