package model

import "time"

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Quote is the latest known price of a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Currency      string    `json:"currency"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previousClose"`
	ChangePercent float64   `json:"changePercent"`
	AsOf          time.Time `json:"asOf"`
}

// ExchangeRate is a conversion factor: 1 From = Rate To.
// Source is "live", "cache", "stale" or "fallback".
type ExchangeRate struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Rate   float64   `json:"rate"`
	Source string    `json:"source"`
	AsOf   time.Time `json:"asOf"`
}

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Amount    float64      `json:"amount"`
	Converted float64      `json:"converted"`
	Rate      ExchangeRate `json:"rate"`
}
