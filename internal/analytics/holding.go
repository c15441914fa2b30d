// Package analytics holds the stateless portfolio calculations: allocation,
// risk, correlation, rebalancing, scenario shifts and backtests. Every
// function works on small in-memory slices and does no I/O.
package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGrouping is returned for an unknown allocation dimension.
var ErrInvalidGrouping = errors.New("invalid allocation grouping")

// Allocation dimensions.
const (
	BySymbol   = "symbol"
	ByMarket   = "market"
	ByCurrency = "currency"
)

// Holding is a position valued in the base currency.
// Price is the per-share price in base currency used to size trades.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Ticker   string  `json:"ticker"`
	Market   string  `json:"market"`
	Currency string  `json:"currency"`
	Shares   float64 `json:"shares"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Cost     float64 `json:"cost"`
}

// TotalValue sums the value of holdings.
func TotalValue(holdings []Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	return total
}

// Weights returns each symbol's share of the total value in percent.
func Weights(holdings []Holding) map[string]float64 {
	total := TotalValue(holdings)
	weights := make(map[string]float64, len(holdings))
	if total <= 0 {
		return weights
	}
	for _, h := range holdings {
		weights[h.Symbol] += h.Value / total * 100
	}
	return weights
}

func groupKey(h Holding, by string) (string, error) {
	switch strings.ToLower(by) {
	case BySymbol, "":
		return h.Symbol, nil
	case ByMarket:
		return h.Market, nil
	case ByCurrency:
		return h.Currency, nil
	default:
		return "", fmt.Errorf("%w: %q (want symbol, market or currency)", ErrInvalidGrouping, by)
	}
}
