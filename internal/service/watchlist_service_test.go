package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func TestWatchlistService(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient().WithQuote("TSLA", 200, "USD")
	svc := testutil.NewTestWatchlistService(t, db, market)

	item, err := svc.AddItem(ctx, request.CreateWatchlistItemRequest{
		Symbol: "tsla", Market: "us", TargetPrice: ptr(180.0), Note: " wait for a dip ",
	})
	if err != nil {
		t.Fatalf("AddItem() returned unexpected error: %v", err)
	}
	if item.Symbol != "TSLA" || item.Note != "wait for a dip" {
		t.Errorf("Unexpected item: %+v", item)
	}
	testutil.NewWatchlistItem().WithSymbol("NOQUOTE").Build(t, db)

	t.Run("duplicate symbol", func(t *testing.T) {
		_, err := svc.AddItem(ctx, request.CreateWatchlistItemRequest{Symbol: "TSLA", Market: "US"})
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})

	t.Run("attaches quotes and distance to target", func(t *testing.T) {
		items, err := svc.GetWatchlist(ctx)
		if err != nil {
			t.Fatalf("GetWatchlist() returned unexpected error: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}
		for _, it := range items {
			switch it.Symbol {
			case "TSLA":
				if !it.PriceAvailable || it.Price != 200 {
					t.Errorf("TSLA quote = %+v", it)
				}
				if it.DistanceToTarget == nil || !approx(*it.DistanceToTarget, -10) {
					t.Errorf("DistanceToTarget = %v, want -10", it.DistanceToTarget)
				}
			case "NOQUOTE":
				if it.PriceAvailable || it.DistanceToTarget != nil {
					t.Errorf("NOQUOTE should be unpriced, got %+v", it)
				}
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.DeleteItem(ctx, item.ID); err != nil {
			t.Fatalf("DeleteItem() returned unexpected error: %v", err)
		}
		err := svc.DeleteItem(ctx, item.ID)
		if !errors.Is(err, apperrors.ErrWatchlistItemNotFound) {
			t.Errorf("Expected ErrWatchlistItemNotFound, got %v", err)
		}
	})
}

func TestMarketService(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient().
		WithQuote("005930.KS", 70000, "KRW").
		WithHistory("005930.KS", 69000, 70000)
	svc := testutil.NewTestMarketService(t, db, market)

	t.Run("quote uses the market suffix", func(t *testing.T) {
		q, err := svc.GetQuote(ctx, "005930", "KR")
		if err != nil {
			t.Fatalf("GetQuote() returned unexpected error: %v", err)
		}
		if q.Price != 70000 {
			t.Errorf("Price = %v, want 70000", q.Price)
		}
	})

	t.Run("history", func(t *testing.T) {
		points, err := svc.GetHistory(ctx, "005930", "KR", 30)
		if err != nil {
			t.Fatalf("GetHistory() returned unexpected error: %v", err)
		}
		if len(points) != 2 {
			t.Errorf("Expected 2 points, got %d", len(points))
		}
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := svc.GetQuote(ctx, "NOPE", "US")
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("conversion through the pivot", func(t *testing.T) {
		conv, err := svc.Convert(ctx, 100, "EUR", "KRW")
		if err != nil {
			t.Fatalf("Convert() returned unexpected error: %v", err)
		}
		if !approx(conv.Converted, 162500) {
			t.Errorf("Converted = %v, want 162500", conv.Converted)
		}

		rate, err := svc.GetExchangeRate(ctx, "krw", "krw")
		if err != nil {
			t.Fatalf("GetExchangeRate() returned unexpected error: %v", err)
		}
		if rate.Rate != 1 {
			t.Errorf("Identity rate = %v, want 1", rate.Rate)
		}
	})
}

func TestSystemService(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	if err := svc.CheckHealth(ctx); err != nil {
		t.Errorf("CheckHealth() returned unexpected error: %v", err)
	}
	info, err := svc.CheckVersion(ctx)
	if err != nil {
		t.Fatalf("CheckVersion() returned unexpected error: %v", err)
	}
	if info.DbVersion < 1 {
		t.Errorf("DbVersion = %d, want at least 1", info.DbVersion)
	}

	db.Close()
	if err := svc.CheckHealth(ctx); err == nil {
		t.Error("Expected CheckHealth() to fail on a closed database")
	}
}
