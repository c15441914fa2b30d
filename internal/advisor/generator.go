// Package advisor turns portfolio numbers into narrative advice using a
// large language model.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// TextGenerator produces text from a system instruction and a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Factory returns a generator for apiKey.
type Factory func(ctx context.Context, apiKey string) (TextGenerator, error)

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a Gemini client for apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, temperature: 0.4}, nil
}

// Model returns the model name used for generation.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends one single-turn request.
func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       &g.temperature,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

// NewGeminiFactory returns a Factory that reuses the client while the key is unchanged.
func NewGeminiFactory(model string) Factory {
	var (
		mu      sync.Mutex
		lastKey string
		last    *GeminiGenerator
	)
	return func(ctx context.Context, apiKey string) (TextGenerator, error) {
		mu.Lock()
		defer mu.Unlock()

		if last != nil && apiKey == lastKey {
			return last, nil
		}
		g, err := NewGeminiGenerator(ctx, apiKey, model)
		if err != nil {
			return nil, err
		}
		last, lastKey = g, apiKey
		return g, nil
	}
}
