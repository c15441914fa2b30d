package validation

import (
	"errors"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
)

func ptr[T any](v T) *T { return &v }

func TestValidateCreateTransaction(t *testing.T) {
	valid := request.CreateTransactionRequest{
		PositionID: "5f3f5a36-4b0c-4d35-9f62-1a8d7c9b2e01",
		Type:       "buy",
		Date:       "2024-03-01",
		Shares:     10,
		Price:      100,
	}

	tests := []struct {
		name   string
		mutate func(*request.CreateTransactionRequest)
		field  string
	}{
		{"valid", func(*request.CreateTransactionRequest) {}, ""},
		{"bad date", func(r *request.CreateTransactionRequest) { r.Date = "01-03-2024" }, "date"},
		{"missing date", func(r *request.CreateTransactionRequest) { r.Date = "" }, "date"},
		{"unknown type", func(r *request.CreateTransactionRequest) { r.Type = "fee" }, "type"},
		{"zero shares", func(r *request.CreateTransactionRequest) { r.Shares = 0 }, "shares"},
		{"negative price", func(r *request.CreateTransactionRequest) { r.Price = -1 }, "price"},
		{"negative fee", func(r *request.CreateTransactionRequest) { r.Fee = -0.5 }, "fee"},
		{"bad currency", func(r *request.CreateTransactionRequest) { r.Currency = "DOLLAR" }, "currency"},
		{"zero rate", func(r *request.CreateTransactionRequest) { r.ExchangeRate = ptr(0.0) }, "exchangeRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := ValidateCreateTransaction(req)

			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, verr.Fields)
			}
		})
	}

	t.Run("invalid position id", func(t *testing.T) {
		req := valid
		req.PositionID = "not-a-uuid"
		if err := ValidateCreateTransaction(req); !errors.Is(err, ErrInvalidUUID) {
			t.Errorf("expected ErrInvalidUUID, got %v", err)
		}
	})
}

func TestValidateCreatePosition(t *testing.T) {
	if err := ValidateCreatePosition(request.CreatePositionRequest{Symbol: "005930", Market: "KR", Currency: "krw"}); err != nil {
		t.Errorf("expected valid position, got %v", err)
	}

	err := ValidateCreatePosition(request.CreatePositionRequest{Symbol: "bad symbol!", Currency: "US"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	for _, field := range []string{"symbol", "market", "currency"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected error on %q", field)
		}
	}
}

func TestValidateSchedule(t *testing.T) {
	req := request.CreateScheduleRequest{
		PositionID:  "5f3f5a36-4b0c-4d35-9f62-1a8d7c9b2e01",
		Frequency:   "monthly",
		Amount:      500000,
		NextDueDate: "2024-04-25",
	}
	if err := ValidateCreateSchedule(req); err != nil {
		t.Errorf("expected valid schedule, got %v", err)
	}

	req.Frequency = "yearly"
	if err := ValidateCreateSchedule(req); err == nil {
		t.Error("expected error for unknown frequency")
	}

	if err := ValidateUpdateSchedule(request.UpdateScheduleRequest{Amount: ptr(-1.0)}); err == nil {
		t.Error("expected error for negative amount")
	}
	if err := ValidateUpdateSchedule(request.UpdateScheduleRequest{Enabled: ptr(false)}); err != nil {
		t.Errorf("expected valid update, got %v", err)
	}
}

func TestValidateUpdateSettings(t *testing.T) {
	if err := ValidateUpdateSettings(request.UpdateSettingsRequest{
		BaseCurrency:  ptr("usd"),
		RiskTolerance: ptr("moderate"),
		RiskFreeRate:  ptr(3.5),
	}); err != nil {
		t.Errorf("expected valid settings, got %v", err)
	}

	err := ValidateUpdateSettings(request.UpdateSettingsRequest{
		RiskTolerance:    ptr("yolo"),
		TargetAllocation: map[string]float64{"VOO": -10},
	})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", verr.Fields)
	}
}

func TestValidateAsk(t *testing.T) {
	if err := ValidateAsk(request.AskRequest{Question: "   "}); err == nil {
		t.Error("expected error for blank question")
	}
	if err := ValidateAsk(request.AskRequest{Question: "How diversified am I?"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
