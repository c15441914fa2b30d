package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// ErrInvalidFrequency is returned for an unknown schedule frequency.
var ErrInvalidFrequency = errors.New("invalid frequency")

// BacktestParams describes a dollar-cost-averaging simulation.
type BacktestParams struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Amount    float64
	Frequency string
}

// BacktestPurchase is one simulated buy.
type BacktestPurchase struct {
	ScheduledDate time.Time `json:"scheduledDate"`
	Date          time.Time `json:"date"`
	Price         float64   `json:"price"`
	Shares        float64   `json:"shares"`
}

// LumpSumResult invests the same total on the first trading day instead.
type LumpSumResult struct {
	Shares        float64 `json:"shares"`
	FinalValue    float64 `json:"finalValue"`
	ReturnPercent float64 `json:"returnPercent"`
	CAGR          float64 `json:"cagr"`
}

// BacktestResult summarizes a simulation. Percentages are in percent.
type BacktestResult struct {
	Symbol        string             `json:"symbol"`
	Frequency     string             `json:"frequency"`
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	Periods       int                `json:"periods"`
	TotalInvested float64            `json:"totalInvested"`
	Shares        float64            `json:"shares"`
	FinalPrice    float64            `json:"finalPrice"`
	FinalValue    float64            `json:"finalValue"`
	ReturnPercent float64            `json:"returnPercent"`
	CAGR          float64            `json:"cagr"`
	MaxDrawdown   float64            `json:"maxDrawdown"`
	LumpSum       LumpSumResult      `json:"lumpSum"`
	Purchases     []BacktestPurchase `json:"purchases"`
}

// Backtest simulates buying Amount of the symbol every period from Start to
// End. Each scheduled date buys at the first close on or after it; dates with
// no close up to End are skipped.
func Backtest(prices []model.PricePoint, p BacktestParams) (BacktestResult, error) {
	if p.Amount <= 0 {
		return BacktestResult{}, fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidAmount)
	}
	if p.Frequency == "" {
		p.Frequency = model.FrequencyMonthly
	}
	if !ValidFrequency(p.Frequency) {
		return BacktestResult{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, p.Frequency)
	}
	start, end := Truncate(p.Start), Truncate(p.End)
	if end.Before(start) {
		return BacktestResult{}, apperrors.ErrInvalidDateRange
	}

	series := make([]model.PricePoint, 0, len(prices))
	for _, pt := range prices {
		d := Truncate(pt.Date)
		if pt.Close > 0 && !d.Before(start) && !d.After(end) {
			series = append(series, model.PricePoint{Date: d, Close: pt.Close})
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	if len(series) == 0 {
		return BacktestResult{}, fmt.Errorf("%w: %s between %s and %s",
			apperrors.ErrNoPriceData, p.Symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	result := BacktestResult{
		Symbol:    p.Symbol,
		Frequency: p.Frequency,
		Start:     start,
		End:       end,
		Purchases: []BacktestPurchase{},
	}

	// Shares bought on each trading day, indexed like series.
	bought := make([]float64, len(series))
	invested := make([]float64, len(series))

	for scheduled := start; !scheduled.After(end); {
		i := sort.Search(len(series), func(i int) bool { return !series[i].Date.Before(scheduled) })
		if i < len(series) {
			shares := p.Amount / series[i].Close
			bought[i] += shares
			invested[i] += p.Amount
			result.Purchases = append(result.Purchases, BacktestPurchase{
				ScheduledDate: scheduled,
				Date:          series[i].Date,
				Price:         series[i].Close,
				Shares:        shares,
			})
		}
		next, err := NextDate(scheduled, p.Frequency, start.Day())
		if err != nil {
			return BacktestResult{}, err
		}
		scheduled = next
	}

	// Value per unit invested, used for the drawdown of the strategy.
	var shares, total float64
	ratios := make([]float64, 0, len(series))
	for i, pt := range series {
		shares += bought[i]
		total += invested[i]
		if total > 0 {
			ratios = append(ratios, shares*pt.Close/total)
		}
	}

	last := series[len(series)-1]
	result.Periods = len(result.Purchases)
	result.TotalInvested = total
	result.Shares = shares
	result.FinalPrice = last.Close
	result.FinalValue = shares * last.Close
	result.MaxDrawdown = MaxDrawdown(ratios)
	if total > 0 {
		result.ReturnPercent = (result.FinalValue/total - 1) * 100
		firstBuy := result.Purchases[0].Date
		result.CAGR = cagr(total, result.FinalValue, firstBuy, last.Date)

		first := series[0]
		lumpShares := total / first.Close
		result.LumpSum = LumpSumResult{
			Shares:        lumpShares,
			FinalValue:    lumpShares * last.Close,
			ReturnPercent: (lumpShares*last.Close/total - 1) * 100,
			CAGR:          cagr(total, lumpShares*last.Close, first.Date, last.Date),
		}
	}

	return result, nil
}

// cagr annualizes the growth from start to end value, in percent. Periods
// shorter than a day return 0.
func cagr(startValue, endValue float64, from, to time.Time) float64 {
	years := to.Sub(from).Hours() / 24 / 365.25
	if years <= 0 || startValue <= 0 || endValue <= 0 {
		return 0
	}
	return (math.Pow(endValue/startValue, 1/years) - 1) * 100
}
