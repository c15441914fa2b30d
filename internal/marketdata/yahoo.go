package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// YahooClient fetches quotes and daily closes from the Yahoo Finance chart API.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooClient creates a client against baseURL
// (https://query1.finance.yahoo.com in production).
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Quote returns the latest regular-market price of symbol.
// The previous close comes from the chart metadata, falling back to the
// second-to-last daily close.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	result, err := c.chart(ctx, symbol, url.Values{
		"interval": {"1d"},
		"range":    {"5d"},
	})
	if err != nil {
		return model.Quote{}, err
	}

	closes := parseCloses(result)
	meta := result.Meta

	price := meta.RegularMarketPrice
	if price <= 0 && len(closes) > 0 {
		price = closes[len(closes)-1].Close
	}
	if price <= 0 {
		return model.Quote{}, fmt.Errorf("%w: %s", apperrors.ErrNoPriceData, symbol)
	}

	prev := meta.ChartPreviousClose
	if prev <= 0 {
		prev = meta.PreviousClose
	}
	if prev <= 0 && len(closes) > 1 {
		prev = closes[len(closes)-2].Close
	}

	asOf := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		asOf = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}

	q := model.Quote{
		Symbol:        symbol,
		Name:          name,
		Currency:      strings.ToUpper(meta.Currency),
		Price:         price,
		PreviousClose: prev,
		AsOf:          asOf,
	}
	if prev > 0 {
		q.ChangePercent = (price - prev) / prev * 100
	}
	return q, nil
}

// History returns daily closes between start and end, oldest first.
func (c *YahooClient) History(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	result, err := c.chart(ctx, symbol, url.Values{
		"interval": {"1d"},
		"period1":  {fmt.Sprint(start.Unix())},
		"period2":  {fmt.Sprint(end.Add(24 * time.Hour).Unix())},
	})
	if err != nil {
		return nil, err
	}

	points := parseCloses(result)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPriceData, symbol)
	}
	return points, nil
}

// parseCloses converts the chart arrays into daily points, skipping null and
// zero closes. Dates are truncated to midnight UTC.
func parseCloses(result chartResult) []model.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		date := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		// Intraday duplicates of the last day replace the earlier entry.
		if n := len(points); n > 0 && points[n-1].Date.Equal(date) {
			points[n-1].Close = *closes[i]
			continue
		}
		points = append(points, model.PricePoint{Date: date, Close: *closes[i]})
	}
	return points
}

func (c *YahooClient) chart(ctx context.Context, symbol string, params url.Values) (chartResult, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return chartResult{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResult{}, fmt.Errorf("yahoo request for %s failed: %w", symbol, err)
	}
	defer resp.Body.Close()

	var response chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return chartResult{}, fmt.Errorf("failed to decode yahoo response for %s (status %d): %w", symbol, resp.StatusCode, err)
	}

	if e := response.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return chartResult{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
		}
		return chartResult{}, fmt.Errorf("yahoo error for %s: %s", symbol, e.Description)
	}
	if len(response.Chart.Result) == 0 {
		return chartResult{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return response.Chart.Result[0], nil
}
