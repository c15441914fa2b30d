package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/portfolio-dashboard/internal/advisor"
)

// MockTextGenerator is a mock implementation of advisor.TextGenerator for testing.
// It records every prompt it receives.
type MockTextGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error

	Systems []string
	Prompts []string
	// Keys records the API key of every factory call
	Keys []string
}

// NewMockTextGenerator creates a generator answering with response.
func NewMockTextGenerator(response string) *MockTextGenerator {
	return &MockTextGenerator{Response: response}
}

// Generate records the request and returns the configured response.
func (m *MockTextGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Systems = append(m.Systems, system)
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Model returns a fixed model name.
func (m *MockTextGenerator) Model() string {
	return "mock-model"
}

// Factory returns an advisor.Factory that always hands out m.
func (m *MockTextGenerator) Factory() advisor.Factory {
	return func(_ context.Context, apiKey string) (advisor.TextGenerator, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.Keys = append(m.Keys, apiKey)
		return m, nil
	}
}
