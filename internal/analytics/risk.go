package analytics

import (
	"math"
	"sort"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// SymbolRisk holds per-symbol statistics over its own history.
// Volatility, AnnualReturn and MaxDrawdown are percentages.
type SymbolRisk struct {
	Symbol       string  `json:"symbol"`
	Weight       float64 `json:"weight"`
	Volatility   float64 `json:"volatility"`
	AnnualReturn float64 `json:"annualReturn"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	Observations int     `json:"observations"`
}

// RiskReport is the risk profile of a weighted portfolio.
type RiskReport struct {
	Symbols             []SymbolRisk `json:"symbols"`
	PortfolioVolatility float64      `json:"portfolioVolatility"`
	PortfolioReturn     float64      `json:"portfolioReturn"`
	MaxDrawdown         float64      `json:"maxDrawdown"`
	SharpeRatio         float64      `json:"sharpeRatio"`
	RiskFreeRate        float64      `json:"riskFreeRate"`
	Observations        int          `json:"observations"`
	Unpriced            []string     `json:"unpriced,omitempty"`
}

func closesOf(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// Risk computes volatility, drawdown and Sharpe ratio. weights are percent by
// symbol; histories are keyed by the same symbols. riskFreeRate is an annual
// percentage. Symbols without history are listed in Unpriced and excluded
// from the portfolio figures, with the remaining weights renormalized.
func Risk(weights map[string]float64, histories map[string][]model.PricePoint, riskFreeRate float64) RiskReport {
	report := RiskReport{RiskFreeRate: riskFreeRate, Symbols: []SymbolRisk{}}

	var priced []string
	for symbol := range weights {
		if len(histories[symbol]) < 2 {
			report.Unpriced = append(report.Unpriced, symbol)
			continue
		}
		priced = append(priced, symbol)
	}
	sort.Strings(priced)
	sort.Strings(report.Unpriced)

	for _, symbol := range priced {
		closes := closesOf(histories[symbol])
		rets := Returns(closes)
		report.Symbols = append(report.Symbols, SymbolRisk{
			Symbol:       symbol,
			Weight:       weights[symbol],
			Volatility:   AnnualizedVolatility(rets),
			AnnualReturn: mean(rets) * TradingDays * 100,
			MaxDrawdown:  MaxDrawdown(closes),
			Observations: len(rets),
		})
	}

	_, aligned := alignCloses(histories, priced)
	if len(priced) == 0 || len(aligned[priced[0]]) < 2 {
		return report
	}

	var weightSum float64
	for _, s := range priced {
		weightSum += weights[s]
	}
	if weightSum <= 0 {
		return report
	}
	w := make([]float64, len(priced))
	rets := make([][]float64, len(priced))
	for i, s := range priced {
		w[i] = weights[s] / weightSum
		rets[i] = Returns(aligned[s])
	}
	n := len(rets[0])
	report.Observations = n

	var variance float64
	for i := range priced {
		for j := range priced {
			variance += w[i] * w[j] * covariance(rets[i], rets[j])
		}
	}
	report.PortfolioVolatility = math.Sqrt(math.Max(variance, 0)*TradingDays) * 100

	// Buy-and-hold value of one unit split by weight. A symbol without a
	// starting price contributes nothing.
	values := make([]float64, n+1)
	portfolioReturns := make([]float64, n)
	for t := 0; t <= n; t++ {
		for i, s := range priced {
			if base := aligned[s][0]; base > 0 {
				values[t] += w[i] * aligned[s][t] / base
			}
		}
	}
	for t := 1; t <= n; t++ {
		if values[t-1] > 0 {
			portfolioReturns[t-1] = values[t]/values[t-1] - 1
		}
	}

	report.PortfolioReturn = mean(portfolioReturns) * TradingDays * 100
	report.MaxDrawdown = MaxDrawdown(values)
	if report.PortfolioVolatility > 0 {
		report.SharpeRatio = (report.PortfolioReturn - riskFreeRate) / report.PortfolioVolatility
	}
	return report
}
