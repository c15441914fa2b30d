package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

// TestAutoInvestService_Execute tests single schedule execution.
//
// WHY: An execution writes a ledger entry, rebuilds the position and advances
// the schedule. All three must happen together or not at all.
func TestAutoInvestService_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("buys amount worth of shares and advances the schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("VOO", 400, "USD")
		svc := testutil.NewTestAutoInvestService(t, db, market)

		position := testutil.NewPosition().WithSymbol("VOO").Build(t, db)
		schedule := testutil.NewSchedule(position.ID).
			WithAmount(1000).
			WithNextDueDate(testutil.Date(2024, 1, 15)).
			Build(t, db)

		exec, err := svc.Execute(ctx, schedule.ID, testutil.Date(2024, 1, 15))
		if err != nil {
			t.Fatalf("Execute() returned unexpected error: %v", err)
		}
		if exec.Transaction == nil || !approx(exec.Transaction.Shares, 2.5) {
			t.Fatalf("Expected a buy of 2.5 shares, got %+v", exec.Transaction)
		}
		if exec.Transaction.PurchaseMethod != model.PurchaseMethodAuto || exec.Transaction.AutoInvestID != schedule.ID {
			t.Errorf("Expected an auto transaction linked to the schedule, got %+v", exec.Transaction)
		}
		if !exec.NextDueDate.Equal(testutil.Date(2024, 2, 15)) {
			t.Errorf("NextDueDate = %v, want 2024-02-15", exec.NextDueDate)
		}

		stored, err := svc.GetSchedule(ctx, schedule.ID)
		if err != nil {
			t.Fatalf("GetSchedule() returned unexpected error: %v", err)
		}
		if !stored.NextDueDate.Equal(testutil.Date(2024, 2, 15)) {
			t.Errorf("Stored NextDueDate = %v, want 2024-02-15", stored.NextDueDate)
		}
		if stored.LastExecutedAt == nil {
			t.Error("Expected LastExecutedAt to be set")
		}

		got, _ := repository.NewPositionRepository(db).GetPosition(ctx, position.ID)
		if !approx(got.Shares, 2.5) || !approx(got.TotalCost, 1000) {
			t.Errorf("Expected 2.5 shares costing 1000, got %v costing %v", got.Shares, got.TotalCost)
		}
	})

	t.Run("converts the quote into the position currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("VOO", 400, "USD")
		svc := testutil.NewTestAutoInvestService(t, db, market)

		position := testutil.NewPosition().WithSymbol("VOO").WithCurrency("KRW").Build(t, db)
		schedule := testutil.NewSchedule(position.ID).WithAmount(1000000).Build(t, db)

		exec, err := svc.Execute(ctx, schedule.ID, schedule.NextDueDate)
		if err != nil {
			t.Fatalf("Execute() returned unexpected error: %v", err)
		}
		tx := exec.Transaction
		if tx.Currency != "USD" || !approx(tx.ExchangeRate, 1300) {
			t.Errorf("Expected USD at 1300, got %s at %v", tx.Currency, tx.ExchangeRate)
		}
		if !approx(tx.Shares, 1.923076) {
			t.Errorf("Shares = %v, want 1.923076", tx.Shares)
		}
	})

	t.Run("catches up without back-filling", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("VOO", 100, "USD")
		svc := testutil.NewTestAutoInvestService(t, db, market)

		position := testutil.NewPosition().WithSymbol("VOO").Build(t, db)
		schedule := testutil.NewSchedule(position.ID).WithNextDueDate(testutil.Date(2024, 1, 31)).Build(t, db)

		exec, err := svc.Execute(ctx, schedule.ID, testutil.Date(2024, 4, 10))
		if err != nil {
			t.Fatalf("Execute() returned unexpected error: %v", err)
		}
		if !exec.NextDueDate.Equal(testutil.Date(2024, 4, 30)) {
			t.Errorf("NextDueDate = %v, want 2024-04-30", exec.NextDueDate)
		}
		testutil.AssertRowCount(t, db, "transaction", 1)
	})

	t.Run("month-end schedule returns to its anchor after february", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().WithQuote("VOO", 100, "USD")
		svc := testutil.NewTestAutoInvestService(t, db, market)

		position := testutil.NewPosition().WithSymbol("VOO").Build(t, db)
		schedule := testutil.NewSchedule(position.ID).WithNextDueDate(testutil.Date(2024, 1, 31)).Build(t, db)

		for _, step := range []struct {
			asOf, want time.Time
		}{
			{testutil.Date(2024, 1, 31), testutil.Date(2024, 2, 29)},
			{testutil.Date(2024, 2, 29), testutil.Date(2024, 3, 31)},
			{testutil.Date(2024, 3, 31), testutil.Date(2024, 4, 30)},
		} {
			exec, err := svc.Execute(ctx, schedule.ID, step.asOf)
			if err != nil {
				t.Fatalf("Execute(%s) returned unexpected error: %v", step.asOf.Format("2006-01-02"), err)
			}
			if !exec.NextDueDate.Equal(step.want) {
				t.Errorf("NextDueDate after %s = %v, want %v", step.asOf.Format("2006-01-02"), exec.NextDueDate, step.want)
			}
		}

		stored, err := svc.GetSchedule(ctx, schedule.ID)
		if err != nil {
			t.Fatalf("GetSchedule() returned unexpected error: %v", err)
		}
		if stored.AnchorDay != 31 {
			t.Errorf("AnchorDay = %d, want 31", stored.AnchorDay)
		}
	})

	t.Run("disabled schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAutoInvestService(t, db, testutil.NewMockMarketClient())
		position := testutil.NewPosition().Build(t, db)
		schedule := testutil.NewSchedule(position.ID).Disabled().Build(t, db)

		_, err := svc.Execute(ctx, schedule.ID, schedule.NextDueDate)
		if !errors.Is(err, apperrors.ErrScheduleDisabled) {
			t.Errorf("Expected ErrScheduleDisabled, got %v", err)
		}
	})

	t.Run("missing quote leaves everything untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAutoInvestService(t, db, testutil.NewMockMarketClient())
		position := testutil.NewPosition().Build(t, db)
		schedule := testutil.NewSchedule(position.ID).Build(t, db)

		_, err := svc.Execute(ctx, schedule.ID, schedule.NextDueDate)
		if !errors.Is(err, apperrors.ErrFailedToRetrieveQuote) || !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected a wrapped ErrSymbolNotFound, got %v", err)
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAutoInvestService(t, db, testutil.NewMockMarketClient())

		_, err := svc.Execute(ctx, testutil.MakeID(), testutil.Date(2024, 1, 1))
		if !errors.Is(err, apperrors.ErrScheduleNotFound) {
			t.Errorf("Expected ErrScheduleNotFound, got %v", err)
		}
	})
}

func TestAutoInvestService_RunDue(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	market := testutil.NewMockMarketClient().WithQuote("VOO", 100, "USD")
	svc := testutil.NewTestAutoInvestService(t, db, market)

	asOf := testutil.Date(2024, 3, 1)
	voo := testutil.NewPosition().WithSymbol("VOO").Build(t, db)
	unpriced := testutil.NewPosition().WithSymbol("NOPE").Build(t, db)

	due := testutil.NewSchedule(voo.ID).WithFrequency(model.FrequencyWeekly).WithNextDueDate(testutil.Date(2024, 2, 28)).Build(t, db)
	failing := testutil.NewSchedule(unpriced.ID).WithNextDueDate(testutil.Date(2024, 3, 1)).Build(t, db)
	testutil.NewSchedule(voo.ID).WithNextDueDate(testutil.Date(2024, 3, 2)).Build(t, db)
	testutil.NewSchedule(voo.ID).WithNextDueDate(testutil.Date(2024, 2, 1)).Disabled().Build(t, db)

	result, err := svc.RunDue(ctx, asOf)
	if err != nil {
		t.Fatalf("RunDue() returned unexpected error: %v", err)
	}
	if result.Executed != 1 || result.Failed != 1 {
		t.Fatalf("Expected 1 executed and 1 failed, got %d and %d", result.Executed, result.Failed)
	}
	if len(result.Executions) != 2 {
		t.Fatalf("Expected 2 executions, got %d", len(result.Executions))
	}
	for _, exec := range result.Executions {
		if exec.ScheduleID == failing.ID && exec.Error == "" {
			t.Error("Expected the failing execution to carry an error")
		}
	}

	stored, _ := svc.GetSchedule(ctx, due.ID)
	if !stored.NextDueDate.Equal(testutil.Date(2024, 3, 6)) {
		t.Errorf("Weekly schedule NextDueDate = %v, want 2024-03-06", stored.NextDueDate)
	}
	stored, _ = svc.GetSchedule(ctx, failing.ID)
	if !stored.NextDueDate.Equal(testutil.Date(2024, 3, 1)) {
		t.Errorf("Failed schedule must stay due, got %v", stored.NextDueDate)
	}
	testutil.AssertRowCount(t, db, "transaction", 1)

	// A second run on the same day only retries the failure.
	market.WithQuote("NOPE", 10, "USD")
	result, err = svc.RunDue(ctx, asOf)
	if err != nil {
		t.Fatalf("RunDue() returned unexpected error: %v", err)
	}
	if result.Executed != 1 || result.Failed != 0 {
		t.Errorf("Expected only the retried schedule, got %d executed and %d failed", result.Executed, result.Failed)
	}
}

func TestAutoInvestService_CRUD(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestAutoInvestService(t, db, testutil.NewMockMarketClient())
	position := testutil.NewPosition().Build(t, db)

	t.Run("create requires a position", func(t *testing.T) {
		_, err := svc.CreateSchedule(ctx, request.CreateScheduleRequest{
			PositionID: testutil.MakeID(), Frequency: "monthly", Amount: 100, NextDueDate: "2024-01-01",
		})
		if !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound, got %v", err)
		}
	})

	created, err := svc.CreateSchedule(ctx, request.CreateScheduleRequest{
		PositionID: position.ID, Frequency: "biweekly", Amount: 250, NextDueDate: "2024-01-05",
	})
	if err != nil {
		t.Fatalf("CreateSchedule() returned unexpected error: %v", err)
	}
	if !created.Enabled {
		t.Error("Expected a new schedule to be enabled")
	}
	if created.AnchorDay != 5 {
		t.Errorf("AnchorDay = %d, want 5", created.AnchorDay)
	}

	t.Run("update applies only given fields", func(t *testing.T) {
		updated, err := svc.UpdateSchedule(ctx, created.ID, request.UpdateScheduleRequest{
			Amount:  ptr(300.0),
			Enabled: ptr(false),
		})
		if err != nil {
			t.Fatalf("UpdateSchedule() returned unexpected error: %v", err)
		}
		if updated.Amount != 300 || updated.Enabled || updated.Frequency != "biweekly" {
			t.Errorf("Unexpected schedule after update: %+v", updated)
		}
	})

	t.Run("moving the due date moves the anchor", func(t *testing.T) {
		updated, err := svc.UpdateSchedule(ctx, created.ID, request.UpdateScheduleRequest{
			NextDueDate: ptr("2024-03-30"),
		})
		if err != nil {
			t.Fatalf("UpdateSchedule() returned unexpected error: %v", err)
		}
		stored, err := svc.GetSchedule(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetSchedule() returned unexpected error: %v", err)
		}
		if updated.AnchorDay != 30 || stored.AnchorDay != 30 {
			t.Errorf("AnchorDay = %d (stored %d), want 30", updated.AnchorDay, stored.AnchorDay)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		schedules, err := svc.GetSchedules(ctx)
		if err != nil {
			t.Fatalf("GetSchedules() returned unexpected error: %v", err)
		}
		if len(schedules) != 1 {
			t.Fatalf("Expected 1 schedule, got %d", len(schedules))
		}

		if err := svc.DeleteSchedule(ctx, created.ID); err != nil {
			t.Fatalf("DeleteSchedule() returned unexpected error: %v", err)
		}
		if err := svc.DeleteSchedule(ctx, created.ID); !errors.Is(err, apperrors.ErrScheduleNotFound) {
			t.Errorf("Expected ErrScheduleNotFound, got %v", err)
		}
	})
}
