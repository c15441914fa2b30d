package service_test

import (
	"context"
	"testing"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/testutil"
)

func TestSettingsService(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults before anything is stored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		settings, err := svc.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings() returned unexpected error: %v", err)
		}
		if settings.BaseCurrency != "KRW" || settings.RiskTolerance != model.RiskModerate || settings.AdvisorLanguage != "en" {
			t.Errorf("Unexpected defaults: %+v", settings)
		}
		if settings.TargetAllocation == nil {
			t.Error("Expected a non-nil target allocation")
		}
		if settings.HasAIAPIKey {
			t.Error("Expected no API key")
		}
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		_, err := svc.UpdateSettings(ctx, request.UpdateSettingsRequest{
			BaseCurrency:     ptr("usd"),
			TargetAllocation: map[string]float64{" voo ": 60, "qqq": 40},
		})
		if err != nil {
			t.Fatalf("UpdateSettings() returned unexpected error: %v", err)
		}
		settings, err := svc.UpdateSettings(ctx, request.UpdateSettingsRequest{
			RiskTolerance:   ptr(model.RiskAggressive),
			AdvisorLanguage: ptr("KO"),
		})
		if err != nil {
			t.Fatalf("UpdateSettings() returned unexpected error: %v", err)
		}

		if settings.BaseCurrency != "USD" {
			t.Errorf("BaseCurrency = %q, want USD", settings.BaseCurrency)
		}
		if settings.TargetAllocation["VOO"] != 60 || settings.TargetAllocation["QQQ"] != 40 {
			t.Errorf("TargetAllocation = %v", settings.TargetAllocation)
		}
		if settings.RiskTolerance != model.RiskAggressive || settings.AdvisorLanguage != "ko" {
			t.Errorf("Unexpected settings: %+v", settings)
		}
		if settings.UpdatedAt == nil {
			t.Error("Expected UpdatedAt to be set")
		}

		stored, err := svc.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings() returned unexpected error: %v", err)
		}
		if stored.BaseCurrency != "USD" || stored.AdvisorLanguage != "ko" {
			t.Errorf("Stored settings = %+v", stored)
		}
	})

	t.Run("api key is stored encrypted and can be cleared", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		settings, err := svc.UpdateSettings(ctx, request.UpdateSettingsRequest{AIAPIKey: ptr("sk-test-123")})
		if err != nil {
			t.Fatalf("UpdateSettings() returned unexpected error: %v", err)
		}
		if !settings.HasAIAPIKey {
			t.Error("Expected HasAIAPIKey to be true")
		}

		var raw string
		if err := db.QueryRow(`SELECT ai_api_key FROM personalization_settings`).Scan(&raw); err != nil {
			t.Fatalf("Failed to read stored key: %v", err)
		}
		if raw == "" || raw == "sk-test-123" {
			t.Errorf("Expected an encrypted key, got %q", raw)
		}

		key, err := svc.APIKey(ctx)
		if err != nil {
			t.Fatalf("APIKey() returned unexpected error: %v", err)
		}
		if key != "sk-test-123" {
			t.Errorf("APIKey() = %q, want sk-test-123", key)
		}

		settings, err = svc.UpdateSettings(ctx, request.UpdateSettingsRequest{AIAPIKey: ptr("")})
		if err != nil {
			t.Fatalf("UpdateSettings() returned unexpected error: %v", err)
		}
		if settings.HasAIAPIKey {
			t.Error("Expected HasAIAPIKey to be false after clearing")
		}
		if key, _ := svc.APIKey(ctx); key != "" {
			t.Errorf("APIKey() = %q after clearing, want empty", key)
		}
	})
}
