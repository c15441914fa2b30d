package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", testutil.Date(2024, 6, 3), testutil.Date(2024, 6, 3)},
		{"wednesday", testutil.Date(2024, 6, 5), testutil.Date(2024, 6, 3)},
		{"sunday", testutil.Date(2024, 6, 9), testutil.Date(2024, 6, 3)},
		{"across a month", testutil.Date(2024, 6, 1), testutil.Date(2024, 5, 27)},
		{"late in the day", time.Date(2024, 6, 4, 23, 59, 0, 0, time.UTC), testutil.Date(2024, 6, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := service.PreviousWeekStart(testutil.Date(2024, 6, 5)); !got.Equal(testutil.Date(2024, 5, 27)) {
		t.Errorf("PreviousWeekStart = %v, want 2024-05-27", got)
	}
}

// TestReportService_Generate tests the weekly report.
//
// WHY: The report totals one week of activity in the base currency while the
// realized gain of a sell depends on the cost basis built up before the week.
func TestReportService_Generate(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient().WithQuote("VOO", 120, "USD")
	svc := testutil.NewTestReportService(t, db, market)
	txSvc := testutil.NewTestTransactionService(t, db)

	position := testutil.NewPosition().WithSymbol("VOO").Build(t, db)
	for _, req := range []request.CreateTransactionRequest{
		{PositionID: position.ID, Type: "buy", Date: "2024-05-28", Shares: 10, Price: 100},
		{PositionID: position.ID, Type: "buy", Date: "2024-06-04", Shares: 5, Price: 110},
		{PositionID: position.ID, Type: "sell", Date: "2024-06-05", Shares: 3, Price: 120},
		{PositionID: position.ID, Type: "dividend", Date: "2024-06-06", Shares: 12, Price: 0.5},
	} {
		if _, err := txSvc.CreateTransaction(ctx, req); err != nil {
			t.Fatalf("CreateTransaction(%s) returned unexpected error: %v", req.Type, err)
		}
	}

	t.Run("no report yet", func(t *testing.T) {
		_, err := svc.GetLatestReport(ctx)
		if !errors.Is(err, apperrors.ErrReportNotFound) {
			t.Errorf("Expected ErrReportNotFound, got %v", err)
		}
	})

	report, err := svc.Generate(ctx, testutil.Date(2024, 6, 5))
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	t.Run("snaps to the week", func(t *testing.T) {
		if !report.WeekStart.Equal(testutil.Date(2024, 6, 3)) || !report.WeekEnd.Equal(testutil.Date(2024, 6, 9)) {
			t.Errorf("Week = %v to %v, want 2024-06-03 to 2024-06-09", report.WeekStart, report.WeekEnd)
		}
	})

	t.Run("activity in base currency", func(t *testing.T) {
		if report.BaseCurrency != "KRW" {
			t.Errorf("BaseCurrency = %q, want KRW", report.BaseCurrency)
		}
		if report.TransactionCount != 3 || report.AutoInvestCount != 0 {
			t.Errorf("Counts = %d/%d, want 3/0", report.TransactionCount, report.AutoInvestCount)
		}
		if !approx(report.BuyAmount, 715000) {
			t.Errorf("BuyAmount = %v, want 715000", report.BuyAmount)
		}
		if !approx(report.SellAmount, 468000) {
			t.Errorf("SellAmount = %v, want 468000", report.SellAmount)
		}
		if !approx(report.RealizedGain, 65000) {
			t.Errorf("RealizedGain = %v, want 65000", report.RealizedGain)
		}
		if !approx(report.DividendIncome, 7800) {
			t.Errorf("DividendIncome = %v, want 7800", report.DividendIncome)
		}
	})

	t.Run("movers and summary", func(t *testing.T) {
		if len(report.TopGainers) != 1 || report.TopGainers[0].Symbol != "VOO" {
			t.Errorf("TopGainers = %+v, want VOO", report.TopGainers)
		}
		if len(report.TopLosers) != 0 {
			t.Errorf("TopLosers = %+v, want none", report.TopLosers)
		}
		for _, want := range []string{"Week of 2024-06-03 to 2024-06-09", "3 transactions (0 automatic)", "715,000", "Top gainer VOO"} {
			if !strings.Contains(report.Summary, want) {
				t.Errorf("Summary %q does not contain %q", report.Summary, want)
			}
		}
	})

	t.Run("regenerating replaces the week", func(t *testing.T) {
		again, err := svc.Generate(ctx, testutil.Date(2024, 6, 9))
		if err != nil {
			t.Fatalf("Generate() returned unexpected error: %v", err)
		}
		testutil.AssertRowCount(t, db, "weekly_report", 1)

		latest, err := svc.GetLatestReport(ctx)
		if err != nil {
			t.Fatalf("GetLatestReport() returned unexpected error: %v", err)
		}
		if latest.ID != again.ID {
			t.Errorf("Latest report = %s, want %s", latest.ID, again.ID)
		}
	})

	t.Run("quiet week", func(t *testing.T) {
		quiet, err := svc.Generate(ctx, testutil.Date(2024, 1, 3))
		if err != nil {
			t.Fatalf("Generate() returned unexpected error: %v", err)
		}
		if quiet.TransactionCount != 0 || quiet.BuyAmount != 0 {
			t.Errorf("Expected no activity, got %+v", quiet)
		}
		if !strings.Contains(quiet.Summary, "no transactions") {
			t.Errorf("Summary %q should mention no transactions", quiet.Summary)
		}

		reports, err := svc.GetReports(ctx, 10)
		if err != nil {
			t.Fatalf("GetReports() returned unexpected error: %v", err)
		}
		if len(reports) != 2 {
			t.Errorf("Expected 2 reports, got %d", len(reports))
		}
	})
}
