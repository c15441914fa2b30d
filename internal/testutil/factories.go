package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// PositionBuilder provides a fluent interface for creating positions
type PositionBuilder struct {
	ID          string
	Symbol      string
	Name        string
	Market      string
	Currency    string
	Shares      float64
	AverageCost float64
}

// NewPosition creates a PositionBuilder with defaults: an empty US position.
//
// Example usage:
//
//	position := testutil.NewPosition().WithSymbol("AAPL").WithHolding(10, 150).Build(t, db)
func NewPosition() *PositionBuilder {
	return &PositionBuilder{
		ID:       MakeID(),
		Symbol:   MakeSymbol("TST"),
		Name:     MakeName("Position"),
		Market:   "US",
		Currency: "USD",
	}
}

// WithID sets a custom ID
func (b *PositionBuilder) WithID(id string) *PositionBuilder {
	b.ID = id
	return b
}

// WithSymbol sets the ticker symbol
func (b *PositionBuilder) WithSymbol(symbol string) *PositionBuilder {
	b.Symbol = symbol
	return b
}

// WithMarket sets the market code
func (b *PositionBuilder) WithMarket(market string) *PositionBuilder {
	b.Market = market
	return b
}

// WithCurrency sets the position currency
func (b *PositionBuilder) WithCurrency(currency string) *PositionBuilder {
	b.Currency = currency
	return b
}

// WithHolding stores shares and average cost directly, without a ledger.
func (b *PositionBuilder) WithHolding(shares, averageCost float64) *PositionBuilder {
	b.Shares = shares
	b.AverageCost = averageCost
	return b
}

// Build creates the position in the database
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	now := time.Now().UTC()
	p := model.Position{
		ID:          b.ID,
		Symbol:      b.Symbol,
		Name:        b.Name,
		Market:      b.Market,
		Currency:    b.Currency,
		Shares:      b.Shares,
		AverageCost: b.AverageCost,
		TotalCost:   b.Shares * b.AverageCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := db.Exec(`
		INSERT INTO position (id, symbol, name, market, currency, shares, average_cost, total_cost,
		                      realized_gain, total_dividends, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, p.ID, p.Symbol, p.Name, p.Market, p.Currency, p.Shares, p.AverageCost, p.TotalCost,
		now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create position: %v", err)
	}

	return p
}

// TransactionBuilder provides a fluent interface for creating transactions.
// Build writes the ledger row only; the position is not recomputed.
type TransactionBuilder struct {
	ID           string
	PositionID   string
	Type         string
	Date         time.Time
	Shares       float64
	Price        float64
	Fee          float64
	Currency     string
	ExchangeRate float64
	Method       string
	AutoInvestID string
	CreatedAt    time.Time
}

// NewTransaction creates a TransactionBuilder with defaults
func NewTransaction(positionID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:           MakeID(),
		PositionID:   positionID,
		Type:         model.TransactionTypeBuy,
		Date:         time.Now().UTC(),
		Shares:       10,
		Price:        100,
		Currency:     "USD",
		ExchangeRate: 1,
		Method:       model.PurchaseMethodManual,
		CreatedAt:    time.Now().UTC(),
	}
}

// WithType sets the transaction type
func (b *TransactionBuilder) WithType(txType string) *TransactionBuilder {
	b.Type = txType
	return b
}

// WithDate sets the transaction date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithShares sets the number of shares
func (b *TransactionBuilder) WithShares(shares float64) *TransactionBuilder {
	b.Shares = shares
	return b
}

// WithPrice sets the price per share
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = price
	return b
}

// WithFee sets the commission
func (b *TransactionBuilder) WithFee(fee float64) *TransactionBuilder {
	b.Fee = fee
	return b
}

// WithCurrency sets the currency and its rate into the position currency
func (b *TransactionBuilder) WithCurrency(currency string, rate float64) *TransactionBuilder {
	b.Currency = currency
	b.ExchangeRate = rate
	return b
}

// FromSchedule marks the transaction as produced by an auto-invest schedule
func (b *TransactionBuilder) FromSchedule(scheduleID string) *TransactionBuilder {
	b.Method = model.PurchaseMethodAuto
	b.AutoInvestID = scheduleID
	return b
}

// Build creates the transaction in the database
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	var autoInvestID any
	if b.AutoInvestID != "" {
		autoInvestID = b.AutoInvestID
	}

	_, err := db.Exec(`
		INSERT INTO "transaction" (id, position_id, type, date, shares, price, fee, currency,
		                           exchange_rate, purchase_method, auto_invest_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.PositionID, b.Type, b.Date.Format(dateLayout), b.Shares, b.Price, b.Fee, b.Currency,
		b.ExchangeRate, b.Method, autoInvestID, b.CreatedAt.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	return model.Transaction{
		ID:             b.ID,
		PositionID:     b.PositionID,
		Type:           b.Type,
		Date:           b.Date,
		Shares:         b.Shares,
		Price:          b.Price,
		Fee:            b.Fee,
		Currency:       b.Currency,
		ExchangeRate:   b.ExchangeRate,
		PurchaseMethod: b.Method,
		AutoInvestID:   b.AutoInvestID,
		CreatedAt:      b.CreatedAt,
	}
}

// ScheduleBuilder provides a fluent interface for creating auto-invest schedules
type ScheduleBuilder struct {
	ID          string
	PositionID  string
	Frequency   string
	Amount      float64
	NextDueDate time.Time
	Enabled     bool
}

// NewSchedule creates an enabled monthly ScheduleBuilder due today
func NewSchedule(positionID string) *ScheduleBuilder {
	y, m, d := time.Now().Date()
	return &ScheduleBuilder{
		ID:          MakeID(),
		PositionID:  positionID,
		Frequency:   model.FrequencyMonthly,
		Amount:      1000,
		NextDueDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Enabled:     true,
	}
}

// WithFrequency sets the frequency
func (b *ScheduleBuilder) WithFrequency(frequency string) *ScheduleBuilder {
	b.Frequency = frequency
	return b
}

// WithAmount sets the amount per execution
func (b *ScheduleBuilder) WithAmount(amount float64) *ScheduleBuilder {
	b.Amount = amount
	return b
}

// WithNextDueDate sets the next due date
func (b *ScheduleBuilder) WithNextDueDate(date time.Time) *ScheduleBuilder {
	b.NextDueDate = date
	return b
}

// Disabled creates the schedule switched off
func (b *ScheduleBuilder) Disabled() *ScheduleBuilder {
	b.Enabled = false
	return b
}

// Build creates the schedule in the database
func (b *ScheduleBuilder) Build(t *testing.T, db *sql.DB) model.AutoInvestSchedule {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO auto_invest_schedule (id, position_id, frequency, amount, next_due_date, anchor_day, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.PositionID, b.Frequency, b.Amount, b.NextDueDate.Format(dateLayout), b.NextDueDate.Day(), b.Enabled, now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}

	return model.AutoInvestSchedule{
		ID:          b.ID,
		PositionID:  b.PositionID,
		Frequency:   b.Frequency,
		Amount:      b.Amount,
		NextDueDate: b.NextDueDate,
		AnchorDay:   b.NextDueDate.Day(),
		Enabled:     b.Enabled,
		CreatedAt:   now,
	}
}

// WatchlistItemBuilder provides a fluent interface for creating watchlist items
type WatchlistItemBuilder struct {
	ID          string
	Symbol      string
	Market      string
	TargetPrice *float64
}

// NewWatchlistItem creates a WatchlistItemBuilder with defaults
func NewWatchlistItem() *WatchlistItemBuilder {
	return &WatchlistItemBuilder{
		ID:     MakeID(),
		Symbol: MakeSymbol("WL"),
		Market: "US",
	}
}

// WithSymbol sets the ticker symbol
func (b *WatchlistItemBuilder) WithSymbol(symbol string) *WatchlistItemBuilder {
	b.Symbol = symbol
	return b
}

// WithTargetPrice sets the target price
func (b *WatchlistItemBuilder) WithTargetPrice(price float64) *WatchlistItemBuilder {
	b.TargetPrice = &price
	return b
}

// Build creates the watchlist item in the database
func (b *WatchlistItemBuilder) Build(t *testing.T, db *sql.DB) model.WatchlistItem {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO watchlist_item (id, symbol, name, market, target_price, note, created_at)
		VALUES (?, ?, '', ?, ?, '', ?)
	`, b.ID, b.Symbol, b.Market, b.TargetPrice, now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create watchlist item: %v", err)
	}

	return model.WatchlistItem{
		ID:          b.ID,
		Symbol:      b.Symbol,
		Market:      b.Market,
		TargetPrice: b.TargetPrice,
		CreatedAt:   now,
	}
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
