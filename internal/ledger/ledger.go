// Package ledger implements weighted-average cost accounting over a
// position's transactions. Positions are always rebuilt by replaying the
// full ordered ledger from zero.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// State is the accounting result of a replay, kept in decimal form.
// TotalCost is the cost basis of the remaining shares in position currency.
type State struct {
	Shares         decimal.Decimal
	TotalCost      decimal.Decimal
	RealizedGain   decimal.Decimal
	TotalDividends decimal.Decimal
}

// AverageCost returns the cost per remaining share, or zero for a flat position.
func (s State) AverageCost() decimal.Decimal {
	if s.Shares.IsZero() {
		return decimal.Zero
	}
	return s.TotalCost.Div(s.Shares)
}

// Fill writes the state into the ledger-derived fields of p.
func (s State) Fill(p *model.Position) {
	p.Shares = s.Shares.InexactFloat64()
	p.TotalCost = s.TotalCost.InexactFloat64()
	p.AverageCost = s.AverageCost().InexactFloat64()
	p.RealizedGain = s.RealizedGain.InexactFloat64()
	p.TotalDividends = s.TotalDividends.InexactFloat64()
}

// Sort orders transactions chronologically by date, then creation time, then id.
// The sort is stable and operates in place.
func Sort(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Replay recomputes the state of a position from an empty ledger.
// The input slice is not modified.
func Replay(txs []model.Transaction) (State, error) {
	ordered := make([]model.Transaction, len(txs))
	copy(ordered, txs)
	Sort(ordered)

	var state State
	for _, tx := range ordered {
		next, err := Apply(state, tx)
		if err != nil {
			return state, fmt.Errorf("transaction %s on %s: %w", tx.ID, tx.Date.Format("2006-01-02"), err)
		}
		state = next
	}
	return state, nil
}

// Apply applies a single transaction. On error the input state is returned unchanged.
func Apply(state State, tx model.Transaction) (State, error) {
	shares := decimal.NewFromFloat(tx.Shares)
	if !shares.IsPositive() {
		return state, fmt.Errorf("%w: shares must be positive", apperrors.ErrInvalidAmount)
	}

	rate := decimal.NewFromFloat(tx.ExchangeRate)
	if tx.ExchangeRate == 0 {
		rate = decimal.NewFromInt(1)
	}
	gross := shares.Mul(decimal.NewFromFloat(tx.Price)).Mul(rate)
	fee := decimal.NewFromFloat(tx.Fee).Mul(rate)

	switch tx.Type {
	case model.TransactionTypeBuy:
		state.Shares = state.Shares.Add(shares)
		state.TotalCost = state.TotalCost.Add(gross).Add(fee)

	case model.TransactionTypeSell:
		if shares.GreaterThan(state.Shares) {
			return state, fmt.Errorf("%w: selling %s, holding %s",
				apperrors.ErrInsufficientShares, shares.String(), state.Shares.String())
		}
		// Cost of the sold shares is taken proportionally so that
		// AverageCost() is unchanged by a partial sale.
		costOfSold := state.TotalCost.Mul(shares).Div(state.Shares)
		state.RealizedGain = state.RealizedGain.Add(gross.Sub(fee).Sub(costOfSold))
		state.Shares = state.Shares.Sub(shares)
		state.TotalCost = state.TotalCost.Sub(costOfSold)
		if state.Shares.IsZero() {
			state.TotalCost = decimal.Zero
		}

	case model.TransactionTypeDividend:
		income := gross.Sub(fee)
		state.TotalDividends = state.TotalDividends.Add(income)
		state.RealizedGain = state.RealizedGain.Add(income)

	default:
		return state, fmt.Errorf("%w: %q", apperrors.ErrUnknownTransactionType, tx.Type)
	}

	return state, nil
}

// Valuation is the mark-to-market view of a state.
type Valuation struct {
	MarketValue           float64
	UnrealizedGain        float64
	UnrealizedGainPercent float64
}

// Unrealized values the remaining shares at price.
func Unrealized(state State, price float64) Valuation {
	value := state.Shares.Mul(decimal.NewFromFloat(price))
	gain := value.Sub(state.TotalCost)

	v := Valuation{
		MarketValue:    value.InexactFloat64(),
		UnrealizedGain: gain.InexactFloat64(),
	}
	if state.TotalCost.IsPositive() {
		v.UnrealizedGainPercent = gain.Div(state.TotalCost).Mul(decimal.NewFromInt(100)).Round(4).InexactFloat64()
	}
	return v
}

// FromPosition rebuilds a State from stored position fields.
func FromPosition(p model.Position) State {
	return State{
		Shares:         decimal.NewFromFloat(p.Shares),
		TotalCost:      decimal.NewFromFloat(p.TotalCost),
		RealizedGain:   decimal.NewFromFloat(p.RealizedGain),
		TotalDividends: decimal.NewFromFloat(p.TotalDividends),
	}
}
