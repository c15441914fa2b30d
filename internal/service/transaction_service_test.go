package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func ptr[T any](v T) *T {
	return &v
}

// TestTransactionService_CreateTransaction verifies that every append replays
// the position ledger with weighted-average cost accounting.
func TestTransactionService_CreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("buys and a partial sell keep the average cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		position := testutil.NewPosition().WithSymbol("VOO").Build(t, db)

		steps := []request.CreateTransactionRequest{
			{PositionID: position.ID, Type: "buy", Date: "2024-01-02", Shares: 10, Price: 100, Fee: 5},
			{PositionID: position.ID, Type: "buy", Date: "2024-01-03", Shares: 10, Price: 120},
			{PositionID: position.ID, Type: "sell", Date: "2024-01-04", Shares: 5, Price: 130},
		}
		for _, req := range steps {
			if _, err := svc.CreateTransaction(ctx, req); err != nil {
				t.Fatalf("CreateTransaction(%s) returned unexpected error: %v", req.Type, err)
			}
		}

		got, err := repository.NewPositionRepository(db).GetPosition(ctx, position.ID)
		if err != nil {
			t.Fatalf("GetPosition() returned unexpected error: %v", err)
		}
		if !approx(got.Shares, 15) {
			t.Errorf("Shares = %v, want 15", got.Shares)
		}
		if !approx(got.AverageCost, 110.25) {
			t.Errorf("AverageCost = %v, want 110.25", got.AverageCost)
		}
		if !approx(got.TotalCost, 1653.75) {
			t.Errorf("TotalCost = %v, want 1653.75", got.TotalCost)
		}
		if !approx(got.RealizedGain, 98.75) {
			t.Errorf("RealizedGain = %v, want 98.75", got.RealizedGain)
		}
		testutil.AssertRowCount(t, db, "transaction", 3)
	})

	t.Run("overselling leaves ledger and position untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		position := testutil.NewPosition().Build(t, db)

		_, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: position.ID, Type: "buy", Date: "2024-01-02", Shares: 10, Price: 100,
		})
		if err != nil {
			t.Fatalf("CreateTransaction(buy) returned unexpected error: %v", err)
		}

		_, err = svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: position.ID, Type: "sell", Date: "2024-01-03", Shares: 11, Price: 100,
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		got, _ := repository.NewPositionRepository(db).GetPosition(ctx, position.ID)
		if !approx(got.Shares, 10) {
			t.Errorf("Shares = %v, want 10", got.Shares)
		}
		testutil.AssertRowCount(t, db, "transaction", 1)
	})

	t.Run("back-dated sell is checked in date order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		position := testutil.NewPosition().Build(t, db)

		_, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: position.ID, Type: "buy", Date: "2024-01-10", Shares: 10, Price: 100,
		})
		if err != nil {
			t.Fatalf("CreateTransaction(buy) returned unexpected error: %v", err)
		}

		_, err = svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: position.ID, Type: "sell", Date: "2024-01-05", Shares: 5, Price: 100,
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
	})

	t.Run("captures the exchange rate into the position currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		position := testutil.NewPosition().WithCurrency("KRW").Build(t, db)

		tx, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: position.ID, Type: "buy", Date: "2024-01-02", Shares: 1, Price: 100, Currency: "usd",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if tx.Currency != "USD" {
			t.Errorf("Currency = %q, want USD", tx.Currency)
		}
		if !approx(tx.ExchangeRate, 1300) {
			t.Errorf("ExchangeRate = %v, want 1300", tx.ExchangeRate)
		}

		got, _ := repository.NewPositionRepository(db).GetPosition(ctx, position.ID)
		if !approx(got.TotalCost, 130000) {
			t.Errorf("TotalCost = %v, want 130000", got.TotalCost)
		}
	})

	t.Run("explicit exchange rate wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		position := testutil.NewPosition().WithCurrency("KRW").Build(t, db)

		tx, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: position.ID, Type: "buy", Date: "2024-01-02", Shares: 1, Price: 100,
			Currency: "USD", ExchangeRate: ptr(1350.0),
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if tx.ExchangeRate != 1350 {
			t.Errorf("ExchangeRate = %v, want 1350", tx.ExchangeRate)
		}
	})

	t.Run("unknown position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)

		_, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
			PositionID: testutil.MakeID(), Type: "buy", Date: "2024-01-02", Shares: 1, Price: 100,
		})
		if !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound, got %v", err)
		}
	})
}

func TestTransactionService_GetTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)

	a := testutil.NewPosition().WithSymbol("AAA").Build(t, db)
	b := testutil.NewPosition().WithSymbol("BBB").Build(t, db)
	testutil.NewTransaction(a.ID).WithDate(testutil.Date(2024, 1, 2)).Build(t, db)
	testutil.NewTransaction(a.ID).WithDate(testutil.Date(2024, 2, 2)).Build(t, db)
	testutil.NewTransaction(b.ID).WithDate(testutil.Date(2024, 1, 15)).Build(t, db)

	t.Run("empty filter returns everything", func(t *testing.T) {
		txs, err := svc.GetTransactions(ctx, model.TransactionFilter{})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(txs) != 3 {
			t.Errorf("Expected 3 transactions, got %d", len(txs))
		}
	})

	t.Run("filters by position", func(t *testing.T) {
		txs, err := svc.GetTransactions(ctx, model.TransactionFilter{PositionID: a.ID})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(txs))
		}
		if txs[0].Symbol != "AAA" {
			t.Errorf("Symbol = %q, want AAA", txs[0].Symbol)
		}
	})

	t.Run("filters by date range", func(t *testing.T) {
		txs, err := svc.GetTransactions(ctx, model.TransactionFilter{
			StartDate: testutil.Date(2024, 1, 10),
			EndDate:   testutil.Date(2024, 1, 31),
		})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(txs) != 1 || txs[0].PositionID != b.ID {
			t.Errorf("Expected only the BBB transaction, got %+v", txs)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetTransaction(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got %v", err)
		}
	})
}
