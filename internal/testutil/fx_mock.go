package testutil

import (
	"context"
	"maps"
	"sync"
)

// TestRates is the USD pivot table served by NewMockRateProvider.
var TestRates = map[string]float64{
	"USD": 1,
	"KRW": 1300,
	"EUR": 0.8,
	"JPY": 150,
}

// MockRateProvider is a mock implementation of fx.Provider for testing.
type MockRateProvider struct {
	mu    sync.Mutex
	Rates map[string]float64
	Err   error
	// Calls tracks how many times Latest was called
	Calls int
}

// NewMockRateProvider creates a provider serving TestRates.
func NewMockRateProvider() *MockRateProvider {
	return &MockRateProvider{Rates: maps.Clone(TestRates)}
}

// Latest returns a copy of the configured rates.
func (m *MockRateProvider) Latest(_ context.Context, _ string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	if m.Err != nil {
		return nil, m.Err
	}
	return maps.Clone(m.Rates), nil
}
