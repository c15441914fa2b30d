package analytics

import (
	"sort"
	"strings"
)

// AllocationSlice is one group of an allocation breakdown.
type AllocationSlice struct {
	Key    string  `json:"key"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
}

// Allocation is the breakdown of portfolio value along one dimension.
type Allocation struct {
	By         string            `json:"by"`
	TotalValue float64           `json:"totalValue"`
	Slices     []AllocationSlice `json:"slices"`
}

// Allocate groups holdings by symbol, market or currency. Weights are in
// percent and sum to 100 whenever the total value is positive. Slices are
// ordered by value, largest first.
func Allocate(holdings []Holding, by string) (Allocation, error) {
	if by == "" {
		by = BySymbol
	}
	by = strings.ToLower(by)

	groups := make(map[string]*AllocationSlice)
	var total float64
	for _, h := range holdings {
		key, err := groupKey(h, by)
		if err != nil {
			return Allocation{}, err
		}
		s, ok := groups[key]
		if !ok {
			s = &AllocationSlice{Key: key}
			groups[key] = s
		}
		s.Value += h.Value
		s.Count++
		total += h.Value
	}

	slices := make([]AllocationSlice, 0, len(groups))
	for _, s := range groups {
		if total > 0 {
			s.Weight = s.Value / total * 100
		}
		slices = append(slices, *s)
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Key < slices[j].Key
	})

	return Allocation{By: by, TotalValue: total, Slices: slices}, nil
}
