package model

import "time"

// Position is the aggregated holding of one symbol. The numeric fields are the
// result of replaying the position's ledger and are never patched in place.
type Position struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Market         string    `json:"market"`
	Currency       string    `json:"currency"`
	Shares         float64   `json:"shares"`
	AverageCost    float64   `json:"averageCost"`
	TotalCost      float64   `json:"totalCost"`
	RealizedGain   float64   `json:"realizedGain"`
	TotalDividends float64   `json:"totalDividends"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PositionResponse is a Position enriched with a market quote.
// Converted* fields are only set when a display currency other than the
// position currency was requested.
type PositionResponse struct {
	Position
	CurrentPrice          float64 `json:"currentPrice"`
	MarketValue           float64 `json:"marketValue"`
	UnrealizedGain        float64 `json:"unrealizedGain"`
	UnrealizedGainPercent float64 `json:"unrealizedGainPercent"`
	PriceAvailable        bool    `json:"priceAvailable"`
	DisplayCurrency       string  `json:"displayCurrency,omitempty"`
	ConvertedMarketValue  float64 `json:"convertedMarketValue,omitempty"`
	ConvertedTotalCost    float64 `json:"convertedTotalCost,omitempty"`
}
