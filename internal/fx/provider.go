package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// Provider returns the latest rates quoted against base: 1 base = rates[c] c.
type Provider interface {
	Latest(ctx context.Context, base string) (map[string]float64, error)
}

// HTTPProvider reads rates from a JSON rates document such as
//
//	{"base":"USD","rates":{"KRW":1352.1,"EUR":0.921}}
//
// The URL may contain one %s which is replaced with the base currency.
type HTTPProvider struct {
	httpClient *http.Client
	url        string
	ratesPath  string
}

// NewHTTPProvider creates a provider for url. ratesPath is a JSONPath
// expression selecting the currency→rate object, "$.rates" when empty.
func NewHTTPProvider(url, ratesPath string, timeout time.Duration) *HTTPProvider {
	if ratesPath == "" {
		ratesPath = "$.rates"
	}
	return &HTTPProvider{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		ratesPath:  ratesPath,
	}
}

// Latest fetches the rates document and extracts the rates with JSONPath.
func (p *HTTPProvider) Latest(ctx context.Context, base string) (map[string]float64, error) {
	addr := p.url
	if strings.Contains(addr, "%s") {
		addr = fmt.Sprintf(addr, base)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fx provider returned status %d", resp.StatusCode)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode fx response: %w", err)
	}

	return extractRates(doc, p.ratesPath)
}

func extractRates(doc any, path string) (map[string]float64, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for wildcard paths; keep the first match.
	if list, ok := val.([]any); ok && len(list) > 0 {
		val = list[0]
	}

	obj, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("fx rates at %q are not an object", path)
	}

	rates := make(map[string]float64, len(obj))
	for currency, raw := range obj {
		rate, ok := raw.(float64)
		if !ok || rate <= 0 {
			continue
		}
		rates[strings.ToUpper(currency)] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("fx response contains no usable rates")
	}
	return rates, nil
}
