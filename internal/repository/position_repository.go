package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a new PositionRepository scoped to the provided transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const positionColumns = `
	id, symbol, name, market, currency, shares, average_cost, total_cost,
	realized_gain, total_dividends, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (model.Position, error) {
	var p model.Position
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.Symbol,
		&p.Name,
		&p.Market,
		&p.Currency,
		&p.Shares,
		&p.AverageCost,
		&p.TotalCost,
		&p.RealizedGain,
		&p.TotalDividends,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Position{}, err
	}

	if p.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Position{}, err
	}
	if p.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Position{}, err
	}
	return p, nil
}

// GetPositions retrieves all positions ordered by symbol.
// Returns an empty slice if no positions exist.
func (r *PositionRepository) GetPositions(ctx context.Context) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position ORDER BY symbol ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetPosition retrieves a single position by ID.
// Returns ErrPositionNotFound if no record with the given ID exists.
func (r *PositionRepository) GetPosition(ctx context.Context, id string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE id = ?`

	p, err := scanPosition(r.getQuerier().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position: %w", err)
	}
	return p, nil
}

// InsertPosition stores a new position.
// Returns ErrDuplicateEntry when the symbol is already tracked.
func (r *PositionRepository) InsertPosition(ctx context.Context, p model.Position) error {
	query := `
		INSERT INTO position (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.Symbol,
		p.Name,
		p.Market,
		p.Currency,
		p.Shares,
		p.AverageCost,
		p.TotalCost,
		p.RealizedGain,
		p.TotalDividends,
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: position for symbol %s already exists", apperrors.ErrDuplicateEntry, p.Symbol)
	}
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// UpdatePositionState overwrites the ledger-derived fields of a position.
func (r *PositionRepository) UpdatePositionState(ctx context.Context, p model.Position) error {
	query := `
		UPDATE position
		SET shares = ?, average_cost = ?, total_cost = ?, realized_gain = ?,
		    total_dividends = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Shares,
		p.AverageCost,
		p.TotalCost,
		p.RealizedGain,
		p.TotalDividends,
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPositionNotFound
	}
	return nil
}

// DeletePosition removes a position. Its transactions and schedules are removed by cascade.
// Returns ErrPositionNotFound if no record with the given ID exists.
func (r *PositionRepository) DeletePosition(ctx context.Context, id string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM position WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPositionNotFound
	}
	return nil
}
