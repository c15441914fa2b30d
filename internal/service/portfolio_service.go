package service

import (
	"context"
	"sort"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/marketdata"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// DefaultAnalysisDays is the history window for risk and correlation.
const DefaultAnalysisDays = 180

// PortfolioService computes portfolio-wide figures in the base currency.
type PortfolioService struct {
	positionService *PositionService
	settingsService *SettingsService
	market          marketdata.Client
	converter       *fx.Converter
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(
	positionService *PositionService,
	settingsService *SettingsService,
	market marketdata.Client,
	converter *fx.Converter,
) *PortfolioService {
	return &PortfolioService{
		positionService: positionService,
		settingsService: settingsService,
		market:          market,
		converter:       converter,
	}
}

// snapshot is the valued portfolio shared by the analytics operations.
type snapshot struct {
	settings  model.PersonalizationSettings
	positions []model.PositionResponse
	holdings  []analytics.Holding
	rates     map[string]float64
	unpriced  []string
}

// load values every position and converts open holdings into the base currency.
func (s *PortfolioService) load(ctx context.Context) (snapshot, error) {
	settings, err := s.settingsService.GetSettings(ctx)
	if err != nil {
		return snapshot{}, err
	}
	positions, err := s.positionService.GetPositions(ctx, "")
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{
		settings:  settings,
		positions: positions,
		holdings:  []analytics.Holding{},
		rates:     map[string]float64{},
		unpriced:  []string{},
	}

	for _, p := range positions {
		rate, ok := snap.rates[p.Currency]
		if !ok {
			r, err := s.converter.Rate(ctx, p.Currency, settings.BaseCurrency)
			if err != nil {
				return snapshot{}, err
			}
			rate = r.Rate
			snap.rates[p.Currency] = rate
		}

		if p.Shares <= 0 {
			continue
		}
		if !p.PriceAvailable {
			snap.unpriced = append(snap.unpriced, p.Symbol)
		}
		snap.holdings = append(snap.holdings, analytics.Holding{
			Symbol:   p.Symbol,
			Ticker:   marketdata.Ticker(p.Symbol, p.Market),
			Market:   p.Market,
			Currency: p.Currency,
			Shares:   p.Shares,
			Price:    p.CurrentPrice * rate,
			Value:    p.MarketValue * rate,
			Cost:     p.TotalCost * rate,
		})
	}
	return snap, nil
}

// GetSummary totals all positions in the base currency.
func (s *PortfolioService) GetSummary(ctx context.Context) (model.PortfolioSummary, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	return summarize(snap), nil
}

func summarize(snap snapshot) model.PortfolioSummary {
	summary := model.PortfolioSummary{
		BaseCurrency:    snap.settings.BaseCurrency,
		PositionCount:   len(snap.holdings),
		UnpricedSymbols: snap.unpriced,
		AsOf:            time.Now().UTC(),
	}
	for _, h := range snap.holdings {
		summary.TotalValue += h.Value
		summary.TotalCost += h.Cost
	}
	for _, p := range snap.positions {
		rate := snap.rates[p.Currency]
		summary.RealizedGain += p.RealizedGain * rate
		summary.TotalDividends += p.TotalDividends * rate
	}

	summary.UnrealizedGain = summary.TotalValue - summary.TotalCost
	if summary.TotalCost > 0 {
		summary.UnrealizedGainPercent = summary.UnrealizedGain / summary.TotalCost * 100
	}
	summary.TotalGain = summary.UnrealizedGain + summary.RealizedGain
	return summary
}

// GetAllocation breaks the portfolio down by symbol, market or currency.
func (s *PortfolioService) GetAllocation(ctx context.Context, by string) (analytics.Allocation, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.Allocation{}, err
	}
	return analytics.Allocate(snap.holdings, by)
}

// GetRisk computes the risk profile over the last days calendar days.
func (s *PortfolioService) GetRisk(ctx context.Context, days int) (analytics.RiskReport, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.RiskReport{}, err
	}
	histories := s.histories(ctx, snap.holdings, days)
	return analytics.Risk(analytics.Weights(snap.holdings), histories, snap.settings.RiskFreeRate), nil
}

// GetCorrelation computes the return correlation of the held symbols.
func (s *PortfolioService) GetCorrelation(ctx context.Context, days int) (analytics.CorrelationMatrix, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.CorrelationMatrix{}, err
	}
	histories := s.histories(ctx, snap.holdings, days)

	// Held symbols without history still get a row of zeros.
	for _, h := range snap.holdings {
		if _, ok := histories[h.Symbol]; !ok {
			histories[h.Symbol] = nil
		}
	}
	return analytics.Correlation(histories), nil
}

// Rebalance suggests trades towards the requested targets, or the stored
// target allocation when the request has none.
func (s *PortfolioService) Rebalance(ctx context.Context, req request.RebalanceRequest) (analytics.RebalancePlan, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.RebalancePlan{}, err
	}

	targets := req.Targets
	if len(targets) == 0 {
		targets = snap.settings.TargetAllocation
	}
	tolerance := analytics.DefaultTolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	return analytics.Rebalance(snap.holdings, targets, tolerance)
}

// Scenario applies percentage price shifts to the current holdings.
func (s *PortfolioService) Scenario(ctx context.Context, req request.ScenarioRequest) (analytics.ScenarioResult, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.ScenarioResult{}, err
	}
	return analytics.Scenario(snap.holdings, req.Shifts), nil
}

// Backtest simulates dollar-cost averaging into one symbol.
func (s *PortfolioService) Backtest(ctx context.Context, params analytics.BacktestParams, market string) (analytics.BacktestResult, error) {
	if params.End.IsZero() {
		params.End = time.Now().UTC()
	}
	prices, err := s.market.History(ctx, marketdata.Ticker(params.Symbol, market), analytics.Truncate(params.Start), params.End)
	if err != nil {
		return analytics.BacktestResult{}, err
	}
	return analytics.Backtest(prices, params)
}

// histories fetches daily closes for holdings, keyed by symbol.
func (s *PortfolioService) histories(ctx context.Context, holdings []analytics.Holding, days int) map[string][]model.PricePoint {
	if days <= 0 {
		days = DefaultAnalysisDays
	}
	end := time.Now().UTC()
	start := analytics.Truncate(end.AddDate(0, 0, -days))

	tickers := make([]string, len(holdings))
	for i, h := range holdings {
		tickers[i] = h.Ticker
	}
	byTicker := marketdata.FetchHistories(ctx, s.market, tickers, start, end)

	out := make(map[string][]model.PricePoint, len(holdings))
	for _, h := range holdings {
		if points, ok := byTicker[h.Ticker]; ok {
			out[h.Symbol] = points
		}
	}
	return out
}

// movers returns the top n gainers and losers by unrealized percent among priced positions.
func movers(positions []model.PositionResponse, n int) ([]model.ReportMover, []model.ReportMover) {
	priced := make([]model.ReportMover, 0, len(positions))
	for _, p := range positions {
		if p.Shares <= 0 || !p.PriceAvailable {
			continue
		}
		priced = append(priced, model.ReportMover{
			Symbol:                p.Symbol,
			UnrealizedGain:        p.UnrealizedGain,
			UnrealizedGainPercent: p.UnrealizedGainPercent,
		})
	}
	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].UnrealizedGainPercent > priced[j].UnrealizedGainPercent
	})

	gainers := []model.ReportMover{}
	for _, m := range priced {
		if len(gainers) == n || m.UnrealizedGainPercent <= 0 {
			break
		}
		gainers = append(gainers, m)
	}
	losers := []model.ReportMover{}
	for i := len(priced) - 1; i >= 0 && len(losers) < n; i-- {
		if priced[i].UnrealizedGainPercent >= 0 {
			break
		}
		losers = append(losers, priced[i])
	}
	return gainers, losers
}
