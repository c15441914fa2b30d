package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// Transactions are append-only, so there is no update method.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionSelect = `
	SELECT t.id, t.position_id, p.symbol, t.type, t.date, t.shares, t.price, t.fee,
	       t.currency, t.exchange_rate, t.purchase_method, t.auto_invest_id, t.created_at
	FROM "transaction" t
	JOIN position p ON p.id = t.position_id
`

func scanTransaction(row rowScanner) (model.TransactionResponse, error) {
	var t model.TransactionResponse
	var dateStr, createdAtStr string
	var autoInvestID sql.NullString

	err := row.Scan(
		&t.ID,
		&t.PositionID,
		&t.Symbol,
		&t.Type,
		&dateStr,
		&t.Shares,
		&t.Price,
		&t.Fee,
		&t.Currency,
		&t.ExchangeRate,
		&t.PurchaseMethod,
		&autoInvestID,
		&createdAtStr,
	)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	t.AutoInvestID = autoInvestID.String
	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.TransactionResponse{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.TransactionResponse{}, err
	}
	t.Amount = t.Shares * t.Price * t.ExchangeRate
	return t, nil
}

// GetTransactions retrieves transactions matching the filter, in ledger order
// (date, then creation time, then id).
func (r *TransactionRepository) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.TransactionResponse, error) {
	query := transactionSelect + ` WHERE 1=1`
	var args []any

	if filter.PositionID != "" {
		query += " AND t.position_id = ?"
		args = append(args, filter.PositionID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND t.date >= ?"
		args = append(args, formatDate(filter.StartDate))
	}
	if !filter.EndDate.IsZero() {
		query += " AND t.date <= ?"
		args = append(args, formatDate(filter.EndDate))
	}
	query += " ORDER BY t.date ASC, t.created_at ASC, t.id ASC"

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.TransactionResponse{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetLedger returns the plain transactions of one position for replay.
func (r *TransactionRepository) GetLedger(ctx context.Context, positionID string) ([]model.Transaction, error) {
	responses, err := r.GetTransactions(ctx, model.TransactionFilter{PositionID: positionID})
	if err != nil {
		return nil, err
	}

	ledger := make([]model.Transaction, len(responses))
	for i, t := range responses {
		ledger[i] = t.Transaction
	}
	return ledger, nil
}

// GetTransaction retrieves a single transaction by ID.
// Returns ErrTransactionNotFound if no record with the given ID exists.
func (r *TransactionRepository) GetTransaction(ctx context.Context, id string) (model.TransactionResponse, error) {
	t, err := scanTransaction(r.getQuerier().QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TransactionResponse{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.TransactionResponse{}, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}

// InsertTransaction appends a transaction to the ledger.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t model.Transaction) error {
	query := `
		INSERT INTO "transaction" (
			id, position_id, type, date, shares, price, fee, currency,
			exchange_rate, purchase_method, auto_invest_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var autoInvestID any
	if t.AutoInvestID != "" {
		autoInvestID = t.AutoInvestID
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.PositionID,
		t.Type,
		formatDate(t.Date),
		t.Shares,
		t.Price,
		t.Fee,
		t.Currency,
		t.ExchangeRate,
		t.PurchaseMethod,
		autoInvestID,
		formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}
