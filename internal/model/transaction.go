package model

import "time"

// Transaction types accepted by the ledger.
const (
	TransactionTypeBuy      = "buy"
	TransactionTypeSell     = "sell"
	TransactionTypeDividend = "dividend"
)

// Purchase methods recorded on a transaction.
const (
	PurchaseMethodManual = "manual"
	PurchaseMethodAuto   = "auto"
)

// Transaction is one append-only ledger entry of a position.
// ExchangeRate converts Price and Fee from Currency into the position currency
// and is captured when the transaction is recorded so replays are deterministic.
type Transaction struct {
	ID             string    `json:"id"`
	PositionID     string    `json:"positionId"`
	Type           string    `json:"type"`
	Date           time.Time `json:"date"`
	Shares         float64   `json:"shares"`
	Price          float64   `json:"price"`
	Fee            float64   `json:"fee"`
	Currency       string    `json:"currency"`
	ExchangeRate   float64   `json:"exchangeRate"`
	PurchaseMethod string    `json:"purchaseMethod"`
	AutoInvestID   string    `json:"autoInvestId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TransactionResponse represents a transaction with enriched data for API responses.
// Includes the symbol of the owning position and the gross amount in position currency.
type TransactionResponse struct {
	Transaction
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// TransactionFilter narrows a transaction listing. Zero values mean "no filter".
type TransactionFilter struct {
	PositionID string
	StartDate  time.Time
	EndDate    time.Time
}
