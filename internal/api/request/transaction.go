package request

// CreateTransactionRequest appends one entry to a position's ledger.
// Currency defaults to the position currency. ExchangeRate converts Currency
// into the position currency and is looked up when omitted.
type CreateTransactionRequest struct {
	PositionID   string   `json:"positionId"`
	Type         string   `json:"type"`
	Date         string   `json:"date"`
	Shares       float64  `json:"shares"`
	Price        float64  `json:"price"`
	Fee          float64  `json:"fee"`
	Currency     string   `json:"currency,omitempty"`
	ExchangeRate *float64 `json:"exchangeRate,omitempty"`
}
