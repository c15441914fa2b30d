package model

import "time"

// WeeklyReport is a derived summary of one calendar week. It is regenerated,
// never edited, and is not part of the transactional ledger.
type WeeklyReport struct {
	ID               string        `json:"id"`
	WeekStart        time.Time     `json:"weekStart"`
	WeekEnd          time.Time     `json:"weekEnd"`
	BaseCurrency     string        `json:"baseCurrency"`
	BuyAmount        float64       `json:"buyAmount"`
	SellAmount       float64       `json:"sellAmount"`
	DividendIncome   float64       `json:"dividendIncome"`
	RealizedGain     float64       `json:"realizedGain"`
	TransactionCount int           `json:"transactionCount"`
	AutoInvestCount  int           `json:"autoInvestCount"`
	TotalValue       float64       `json:"totalValue"`
	TotalCost        float64       `json:"totalCost"`
	UnrealizedGain   float64       `json:"unrealizedGain"`
	ReturnPercent    float64       `json:"returnPercent"`
	TopGainers       []ReportMover `json:"topGainers"`
	TopLosers        []ReportMover `json:"topLosers"`
	Summary          string        `json:"summary"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// ReportMover is one entry of the gainers/losers lists.
type ReportMover struct {
	Symbol                string  `json:"symbol"`
	UnrealizedGain        float64 `json:"unrealizedGain"`
	UnrealizedGainPercent float64 `json:"unrealizedGainPercent"`
}
