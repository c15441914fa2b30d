package request

type CreateWatchlistItemRequest struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Market      string   `json:"market"`
	TargetPrice *float64 `json:"targetPrice,omitempty"`
	Note        string   `json:"note"`
}
