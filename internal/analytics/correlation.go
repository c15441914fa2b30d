package analytics

import (
	"sort"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// CorrelationMatrix holds Pearson coefficients of daily returns.
// Matrix[i][j] corresponds to Symbols[i] and Symbols[j].
type CorrelationMatrix struct {
	Symbols      []string    `json:"symbols"`
	Matrix       [][]float64 `json:"matrix"`
	Observations [][]int     `json:"observations"`
}

// Correlation builds a symmetric correlation matrix. Each pair is aligned on
// the dates both symbols traded; pairs with fewer than two aligned returns
// get 0. The diagonal is always 1.
func Correlation(histories map[string][]model.PricePoint) CorrelationMatrix {
	symbols := make([]string, 0, len(histories))
	for s := range histories {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	n := len(symbols)
	m := CorrelationMatrix{
		Symbols:      symbols,
		Matrix:       make([][]float64, n),
		Observations: make([][]int, n),
	}
	for i := range symbols {
		m.Matrix[i] = make([]float64, n)
		m.Observations[i] = make([]int, n)
		m.Matrix[i][i] = 1
		m.Observations[i][i] = max(len(histories[symbols[i]])-1, 0)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			_, aligned := alignCloses(histories, []string{symbols[i], symbols[j]})
			a := Returns(aligned[symbols[i]])
			b := Returns(aligned[symbols[j]])

			var r float64
			if len(a) >= 2 {
				r = pearson(a, b)
			}
			m.Matrix[i][j], m.Matrix[j][i] = r, r
			m.Observations[i][j], m.Observations[j][i] = len(a), len(a)
		}
	}
	return m
}
