package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// TradingDays is the annualization factor for daily statistics.
const TradingDays = 252

// Returns converts consecutive closes into simple daily returns.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// covariance is the sample covariance of two equally long series.
func covariance(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0
	}
	ma, mb := mean(a), mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(n-1)
}

// StdDev is the sample standard deviation.
func StdDev(xs []float64) float64 {
	return math.Sqrt(covariance(xs, xs))
}

// AnnualizedVolatility returns σ·√252 of daily returns, in percent.
func AnnualizedVolatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(TradingDays) * 100
}

// MaxDrawdown returns the largest peak-to-trough decline of values, as a
// positive percentage.
func MaxDrawdown(values []float64) float64 {
	var peak, worst float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

// pearson returns the correlation coefficient of a and b, zero when either
// series has no variance or fewer than two observations.
func pearson(a, b []float64) float64 {
	if len(a) < 2 || len(a) != len(b) {
		return 0
	}
	sa, sb := StdDev(a), StdDev(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	r := covariance(a, b) / (sa * sb)
	// Clamp float noise.
	return math.Max(-1, math.Min(1, r))
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// alignCloses returns the closes of each symbol restricted to the dates every
// listed symbol has a price for, ordered by date.
func alignCloses(histories map[string][]model.PricePoint, symbols []string) ([]time.Time, map[string][]float64) {
	if len(symbols) == 0 {
		return nil, nil
	}

	byDate := make(map[string]map[string]float64)
	dates := make(map[string]time.Time)
	for _, s := range symbols {
		for _, p := range histories[s] {
			k := dayKey(p.Date)
			if byDate[k] == nil {
				byDate[k] = make(map[string]float64)
			}
			byDate[k][s] = p.Close
			dates[k] = p.Date
		}
	}

	var common []string
	for k, prices := range byDate {
		if len(prices) == len(symbols) {
			common = append(common, k)
		}
	}
	sort.Strings(common)

	aligned := make(map[string][]float64, len(symbols))
	times := make([]time.Time, len(common))
	for i, k := range common {
		times[i] = dates[k]
		for _, s := range symbols {
			aligned[s] = append(aligned[s], byDate[k][s])
		}
	}
	return times, aligned
}
