package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/ledger"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
)

// ledgerWriter appends ledger entries and rebuilds the owning position inside
// one database transaction. Positions are always replayed from zero.
type ledgerWriter struct {
	db              *sql.DB
	positionRepo    *repository.PositionRepository
	transactionRepo *repository.TransactionRepository
}

// inTx runs fn in a database transaction and commits when it returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebuild replays the stored ledger plus pending entries, inserts the pending
// entries and stores the new position state. A replay error leaves the
// database untouched. A stored ledger that no longer replays on its own is
// reported as ErrDataInconsistency.
func (w *ledgerWriter) rebuild(ctx context.Context, tx *sql.Tx, positionID string, pending ...model.Transaction) (model.Position, error) {
	positionRepo := w.positionRepo.WithTx(tx)
	transactionRepo := w.transactionRepo.WithTx(tx)

	position, err := positionRepo.GetPosition(ctx, positionID)
	if err != nil {
		return model.Position{}, err
	}

	stored, err := transactionRepo.GetLedger(ctx, positionID)
	if err != nil {
		return model.Position{}, err
	}

	state, err := ledger.Replay(stored)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: ledger of %s: %w", apperrors.ErrDataInconsistency, position.Symbol, err)
	}
	if len(pending) > 0 {
		// Pending entries may be back-dated, so the whole ledger is replayed.
		if state, err = ledger.Replay(append(stored, pending...)); err != nil {
			return model.Position{}, err
		}
	}

	for _, t := range pending {
		if err := transactionRepo.InsertTransaction(ctx, t); err != nil {
			return model.Position{}, err
		}
	}

	state.Fill(&position)
	position.UpdatedAt = time.Now().UTC()
	if err := positionRepo.UpdatePositionState(ctx, position); err != nil {
		return model.Position{}, err
	}
	return position, nil
}
