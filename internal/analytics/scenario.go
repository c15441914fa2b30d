package analytics

import (
	"sort"
	"strings"
)

// WildcardShift applies to every holding without a more specific shift.
const WildcardShift = "*"

// ScenarioPosition is the effect of a shift on one holding.
type ScenarioPosition struct {
	Symbol  string  `json:"symbol"`
	Market  string  `json:"market"`
	Shift   float64 `json:"shift"`
	Before  float64 `json:"before"`
	After   float64 `json:"after"`
	Delta   float64 `json:"delta"`
	Matched string  `json:"matched,omitempty"`
}

// ScenarioResult is the effect of a set of shifts on the whole portfolio.
type ScenarioResult struct {
	Positions    []ScenarioPosition `json:"positions"`
	Before       float64            `json:"before"`
	After        float64            `json:"after"`
	Delta        float64            `json:"delta"`
	DeltaPercent float64            `json:"deltaPercent"`
}

// Scenario applies percentage price shifts keyed by symbol, market or "*".
// A symbol key takes precedence over a market key, which takes precedence
// over the wildcard. Keys are case-insensitive.
func Scenario(holdings []Holding, shifts map[string]float64) ScenarioResult {
	normalized := make(map[string]float64, len(shifts))
	for k, v := range shifts {
		normalized[strings.ToUpper(strings.TrimSpace(k))] = v
	}

	result := ScenarioResult{Positions: make([]ScenarioPosition, 0, len(holdings))}
	for _, h := range holdings {
		p := ScenarioPosition{Symbol: h.Symbol, Market: h.Market, Before: h.Value}

		if v, ok := normalized[strings.ToUpper(h.Symbol)]; ok {
			p.Shift, p.Matched = v, h.Symbol
		} else if v, ok := normalized[strings.ToUpper(h.Market)]; ok && h.Market != "" {
			p.Shift, p.Matched = v, h.Market
		} else if v, ok := normalized[WildcardShift]; ok {
			p.Shift, p.Matched = v, WildcardShift
		}

		p.After = h.Value * (1 + p.Shift/100)
		p.Delta = p.After - p.Before

		result.Before += p.Before
		result.After += p.After
		result.Positions = append(result.Positions, p)
	}

	sort.Slice(result.Positions, func(i, j int) bool {
		return result.Positions[i].Symbol < result.Positions[j].Symbol
	})

	result.Delta = result.After - result.Before
	if result.Before > 0 {
		result.DeltaPercent = result.Delta / result.Before * 100
	}
	return result
}
