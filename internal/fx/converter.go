// Package fx converts amounts between currencies using a USD-pivot rate
// table that is cached in memory and persisted for offline fallback.
package fx

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// Pivot is the currency every table is quoted against.
const Pivot = "USD"

// Rate sources reported on model.ExchangeRate.
const (
	SourceIdentity = "identity"
	SourceLive     = "live"
	SourceCache    = "cache"
	SourceStale    = "stale"
	SourceFallback = "fallback"
)

// retryAfter keeps a failing provider from being hit on every request.
const retryAfter = time.Minute

// fallbackRates are used when neither the provider nor the store has anything.
var fallbackRates = map[string]float64{
	"USD": 1,
	"KRW": 1350,
	"EUR": 0.92,
	"JPY": 150,
	"GBP": 0.79,
	"CNY": 7.2,
	"HKD": 7.8,
	"CAD": 1.36,
	"AUD": 1.52,
	"CHF": 0.88,
	"TWD": 32,
}

// RateStore persists pivot tables between runs.
type RateStore interface {
	SaveRates(ctx context.Context, base string, rates map[string]float64, fetchedAt time.Time) error
	LoadRates(ctx context.Context, base string) (map[string]float64, time.Time, error)
}

// Converter is safe for concurrent use.
type Converter struct {
	provider Provider
	store    RateStore
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	table     map[string]float64
	source    string
	asOf      time.Time
	fetchedAt time.Time
	failedAt  time.Time
}

// NewConverter creates a Converter. store may be nil.
func NewConverter(provider Provider, store RateStore, ttl time.Duration) *Converter {
	return &Converter{
		provider: provider,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *Converter) WithClock(now func() time.Time) *Converter {
	c.now = now
	return c
}

type snapshot struct {
	table  map[string]float64
	source string
	asOf   time.Time
}

// pivotTable returns the current table, refreshing it when the TTL expired.
// Lookup order: fresh memory, provider, stale memory, store, hardcoded.
func (c *Converter) pivotTable(ctx context.Context) snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.table != nil && c.source == SourceLive && now.Sub(c.fetchedAt) < c.ttl {
		return snapshot{c.table, SourceCache, c.asOf}
	}

	canRetry := c.failedAt.IsZero() || now.Sub(c.failedAt) >= retryAfter
	if c.provider != nil && canRetry {
		rates, err := c.provider.Latest(ctx, Pivot)
		if err == nil {
			rates[Pivot] = 1
			c.table, c.source, c.asOf, c.fetchedAt = rates, SourceLive, now, now
			c.failedAt = time.Time{}
			if c.store != nil {
				if err := c.store.SaveRates(ctx, Pivot, rates, now); err != nil {
					log.Warn().Err(err).Msg("failed to persist exchange rates")
				}
			}
			return snapshot{rates, SourceLive, now}
		}
		c.failedAt = now
		log.Warn().Err(err).Msg("exchange rate provider failed, using fallback rates")
	}

	if c.table != nil {
		return snapshot{c.table, SourceStale, c.asOf}
	}

	if c.store != nil {
		rates, fetchedAt, err := c.store.LoadRates(ctx, Pivot)
		if err == nil {
			rates[Pivot] = 1
			c.table, c.source, c.asOf = rates, SourceStale, fetchedAt
			return snapshot{rates, SourceStale, fetchedAt}
		}
	}

	return snapshot{fallbackRates, SourceFallback, time.Time{}}
}

// Rate returns the factor converting one unit of from into to.
// Both currencies are derived from the same pivot table so that
// Rate(a, b) * Rate(b, a) == 1 up to float rounding.
func (c *Converter) Rate(ctx context.Context, from, to string) (model.ExchangeRate, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return model.ExchangeRate{From: from, To: to, Rate: 1, Source: SourceIdentity, AsOf: c.now()}, nil
	}

	snap := c.pivotTable(ctx)
	fromRate, ok := lookup(snap.table, from)
	if !ok {
		return model.ExchangeRate{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, from)
	}
	toRate, ok := lookup(snap.table, to)
	if !ok {
		return model.ExchangeRate{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, to)
	}

	return model.ExchangeRate{
		From:   from,
		To:     to,
		Rate:   toRate / fromRate,
		Source: snap.source,
		AsOf:   snap.asOf,
	}, nil
}

// lookup falls back to the hardcoded table for currencies a provider omitted.
func lookup(table map[string]float64, currency string) (float64, bool) {
	if r, ok := table[currency]; ok && r > 0 {
		return r, true
	}
	r, ok := fallbackRates[currency]
	return r, ok
}

// Convert converts amount from one currency to another.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (model.Conversion, error) {
	rate, err := c.Rate(ctx, from, to)
	if err != nil {
		return model.Conversion{}, err
	}
	return model.Conversion{
		Amount:    amount,
		Converted: amount * rate.Rate,
		Rate:      rate,
	}, nil
}
