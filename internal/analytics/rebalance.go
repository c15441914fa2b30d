package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultTolerance is the hold band around a target weight, in percentage points.
const DefaultTolerance = 1.0

// Trade actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// ErrInvalidTargets is returned when target weights cannot be normalized.
var ErrInvalidTargets = errors.New("invalid target allocation")

// RebalanceSuggestion is the trade that moves one symbol towards its target.
// Difference is TargetValue - CurrentValue in base currency.
type RebalanceSuggestion struct {
	Symbol        string  `json:"symbol"`
	CurrentWeight float64 `json:"currentWeight"`
	TargetWeight  float64 `json:"targetWeight"`
	CurrentValue  float64 `json:"currentValue"`
	TargetValue   float64 `json:"targetValue"`
	Difference    float64 `json:"difference"`
	Shares        float64 `json:"shares"`
	Price         float64 `json:"price"`
	Action        string  `json:"action"`
}

// RebalancePlan lists suggestions ordered by absolute difference, largest first.
type RebalancePlan struct {
	TotalValue  float64               `json:"totalValue"`
	Tolerance   float64               `json:"tolerance"`
	Suggestions []RebalanceSuggestion `json:"suggestions"`
}

// NormalizeTargets upper-cases symbols and scales weights to sum to 100.
func NormalizeTargets(targets map[string]float64) (map[string]float64, error) {
	var sum float64
	for symbol, w := range targets {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight for %s must be non-negative", ErrInvalidTargets, symbol)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: weights must sum to a positive value", ErrInvalidTargets)
	}

	out := make(map[string]float64, len(targets))
	for symbol, w := range targets {
		out[strings.ToUpper(strings.TrimSpace(symbol))] += w / sum * 100
	}
	return out, nil
}

// Rebalance compares current weights with targets. Holdings missing from
// targets get a target of 0; targets without a holding start from 0. Shares
// are rounded down to 4 decimal places and are 0 when no price is known.
// A negative tolerance selects DefaultTolerance; 0 holds only exact matches.
func Rebalance(holdings []Holding, targets map[string]float64, tolerance float64) (RebalancePlan, error) {
	normalized, err := NormalizeTargets(targets)
	if err != nil {
		return RebalancePlan{}, err
	}
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}

	total := TotalValue(holdings)
	current := make(map[string]Holding)
	for _, h := range holdings {
		agg := current[h.Symbol]
		agg.Symbol = h.Symbol
		agg.Value += h.Value
		if h.Price > 0 {
			agg.Price = h.Price
		}
		current[h.Symbol] = agg
	}

	symbols := make(map[string]bool)
	for s := range current {
		symbols[s] = true
	}
	for s := range normalized {
		symbols[s] = true
	}

	plan := RebalancePlan{TotalValue: total, Tolerance: tolerance}
	for symbol := range symbols {
		h := current[symbol]
		s := RebalanceSuggestion{
			Symbol:       symbol,
			TargetWeight: normalized[symbol],
			CurrentValue: h.Value,
			Price:        h.Price,
		}
		if total > 0 {
			s.CurrentWeight = h.Value / total * 100
		}
		s.TargetValue = total * s.TargetWeight / 100
		s.Difference = s.TargetValue - s.CurrentValue

		switch {
		case math.Abs(s.CurrentWeight-s.TargetWeight) <= tolerance:
			s.Action = ActionHold
		case s.Difference > 0:
			s.Action = ActionBuy
		default:
			s.Action = ActionSell
		}
		if s.Action != ActionHold && s.Price > 0 {
			s.Shares = floorTo(math.Abs(s.Difference)/s.Price, 4)
		}
		plan.Suggestions = append(plan.Suggestions, s)
	}

	sort.Slice(plan.Suggestions, func(i, j int) bool {
		a, b := math.Abs(plan.Suggestions[i].Difference), math.Abs(plan.Suggestions[j].Difference)
		if a != b {
			return a > b
		}
		return plan.Suggestions[i].Symbol < plan.Suggestions[j].Symbol
	})
	return plan, nil
}

func floorTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	// Nudge before flooring so values like 2.00000000001 below a boundary
	// caused by float error do not lose a unit.
	return math.Floor(x*p+1e-9) / p
}
