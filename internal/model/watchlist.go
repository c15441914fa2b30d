package model

import "time"

// WatchlistItem is a symbol the household follows without holding it.
type WatchlistItem struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Market      string    `json:"market"`
	TargetPrice *float64  `json:"targetPrice,omitempty"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WatchlistItemResponse attaches the latest quote to a watchlist item.
type WatchlistItemResponse struct {
	WatchlistItem
	Price            float64  `json:"price"`
	Currency         string   `json:"currency"`
	ChangePercent    float64  `json:"changePercent"`
	DistanceToTarget *float64 `json:"distanceToTarget,omitempty"`
	PriceAvailable   bool     `json:"priceAvailable"`
}
