package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// WatchlistRepository provides data access methods for the watchlist_item table.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// GetItems retrieves the watchlist ordered by symbol.
func (r *WatchlistRepository) GetItems(ctx context.Context) ([]model.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, name, market, target_price, note, created_at
		FROM watchlist_item
		ORDER BY symbol ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist_item table: %w", err)
	}
	defer rows.Close()

	items := []model.WatchlistItem{}
	for rows.Next() {
		var item model.WatchlistItem
		var target sql.NullFloat64
		var createdAt string

		err := rows.Scan(
			&item.ID,
			&item.Symbol,
			&item.Name,
			&item.Market,
			&target,
			&item.Note,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist_item table results: %w", err)
		}
		if target.Valid {
			item.TargetPrice = &target.Float64
		}
		if item.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist_item table: %w", err)
	}
	return items, nil
}

// InsertItem adds a symbol to the watchlist.
// Returns ErrDuplicateEntry when the symbol is already watched.
func (r *WatchlistRepository) InsertItem(ctx context.Context, item model.WatchlistItem) error {
	var target any
	if item.TargetPrice != nil {
		target = *item.TargetPrice
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist_item (id, symbol, name, market, target_price, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.Symbol,
		item.Name,
		item.Market,
		target,
		item.Note,
		formatTimestamp(item.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s is already on the watchlist", apperrors.ErrDuplicateEntry, item.Symbol)
	}
	if err != nil {
		return fmt.Errorf("failed to insert watchlist_item: %w", err)
	}
	return nil
}

// DeleteItem removes a watchlist entry.
// Returns ErrWatchlistItemNotFound if no record with the given ID exists.
func (r *WatchlistRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_item WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist_item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrWatchlistItemNotFound
	}
	return nil
}
