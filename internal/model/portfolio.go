package model

import "time"

// PortfolioSummary is the state of all positions at one point in time,
// expressed in the base currency.
type PortfolioSummary struct {
	BaseCurrency          string    `json:"baseCurrency"`
	TotalValue            float64   `json:"totalValue"`
	TotalCost             float64   `json:"totalCost"`
	UnrealizedGain        float64   `json:"unrealizedGain"`
	UnrealizedGainPercent float64   `json:"unrealizedGainPercent"`
	RealizedGain          float64   `json:"realizedGain"`
	TotalDividends        float64   `json:"totalDividends"`
	TotalGain             float64   `json:"totalGain"`
	PositionCount         int       `json:"positionCount"`
	UnpricedSymbols       []string  `json:"unpricedSymbols,omitempty"`
	AsOf                  time.Time `json:"asOf"`
}
