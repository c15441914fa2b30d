package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
)

// ExchangeRateRepository persists the last known rate per currency pair so a
// stale rate can be served when the live provider is unreachable.
type ExchangeRateRepository struct {
	db *sql.DB
}

// NewExchangeRateRepository creates a new ExchangeRateRepository with the provided database connection.
func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// SaveRates upserts a batch of rates quoted against one base currency.
func (r *ExchangeRateRepository) SaveRates(ctx context.Context, base string, rates map[string]float64, fetchedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exchange_rate (from_currency, to_currency, rate, date, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(from_currency, to_currency) DO UPDATE SET
			rate = excluded.rate,
			date = excluded.date,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare exchange_rate upsert: %w", err)
	}
	defer stmt.Close()

	for currency, rate := range rates {
		if rate <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, base, currency, rate, formatDate(fetchedAt), formatTimestamp(fetchedAt)); err != nil {
			return fmt.Errorf("failed to upsert exchange_rate %s/%s: %w", base, currency, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exchange rates: %w", err)
	}
	return nil
}

// LoadRates returns every persisted rate quoted against base and the oldest fetch time among them.
// Returns ErrExchangeRateNotFound when nothing is stored for base.
func (r *ExchangeRateRepository) LoadRates(ctx context.Context, base string) (map[string]float64, time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_currency, rate, fetched_at
		FROM exchange_rate
		WHERE from_currency = ?
	`, base)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	var oldest time.Time
	for rows.Next() {
		var currency, fetchedAt string
		var rate float64
		if err := rows.Scan(&currency, &rate, &fetchedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan exchange_rate table results: %w", err)
		}
		t, err := ParseTime(fetchedAt)
		if err != nil {
			return nil, time.Time{}, err
		}
		if oldest.IsZero() || t.Before(oldest) {
			oldest = t
		}
		rates[currency] = rate
	}

	if err = rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("error iterating exchange_rate table: %w", err)
	}
	if len(rates) == 0 {
		return nil, time.Time{}, apperrors.ErrExchangeRateNotFound
	}
	return rates, oldest, nil
}
