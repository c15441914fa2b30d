package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
)

// TransactionService handles ledger entries. Transactions are append-only;
// every append replays the position's full ledger.
type TransactionService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	positionRepo    *repository.PositionRepository
	writer          *ledgerWriter
	converter       *fx.Converter
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	positionRepo *repository.PositionRepository,
	converter *fx.Converter,
) *TransactionService {
	return &TransactionService{
		db:              db,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		writer: &ledgerWriter{
			db:              db,
			positionRepo:    positionRepo,
			transactionRepo: transactionRepo,
		},
		converter: converter,
	}
}

// GetTransactions lists transactions matching filter in ledger order.
func (s *TransactionService) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.TransactionResponse, error) {
	return s.transactionRepo.GetTransactions(ctx, filter)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (model.TransactionResponse, error) {
	return s.transactionRepo.GetTransaction(ctx, id)
}

// CreateTransaction appends a manual transaction and rebuilds its position.
// The exchange rate into the position currency is captured now so later
// replays never depend on live rates.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	position, err := s.positionRepo.GetPosition(ctx, req.PositionID)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = position.Currency
	}

	rate := 1.0
	switch {
	case req.ExchangeRate != nil:
		rate = *req.ExchangeRate
	case currency != position.Currency:
		r, err := s.converter.Rate(ctx, currency, position.Currency)
		if err != nil {
			return nil, err
		}
		rate = r.Rate
	}

	transaction := &model.Transaction{
		ID:             uuid.New().String(),
		PositionID:     position.ID,
		Type:           req.Type,
		Date:           date,
		Shares:         req.Shares,
		Price:          req.Price,
		Fee:            req.Fee,
		Currency:       currency,
		ExchangeRate:   rate,
		PurchaseMethod: model.PurchaseMethodManual,
		CreatedAt:      time.Now().UTC(),
	}

	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.writer.rebuild(ctx, tx, position.ID, *transaction)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return transaction, nil
}
